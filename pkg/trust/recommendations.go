package trust

// recommendations renders threshold rules into the human-readable strings
// dashboards display next to an agent's score.
func recommendations(factors TrustFactors, newScore float64) []string {
	var recs []string
	if factors.Accuracy < 0.7 {
		recs = append(recs, "improve response accuracy by citing verifiable sources")
	}
	if factors.Reliability < 0.7 {
		recs = append(recs, "complete tasks fully before responding to improve reliability")
	}
	if factors.Compliance < 0.8 {
		recs = append(recs, "review applicable policy guidelines before acting")
	}
	if factors.Safety < 0.8 {
		recs = append(recs, "apply additional safety review to generated outputs")
	}
	if factors.Consistency < 0.7 {
		recs = append(recs, "align responses with previous positions to improve consistency")
	}
	switch {
	case newScore < 0.5:
		recs = append(recs, "trust critically low: route actions through supervised execution")
	case newScore < 0.7:
		recs = append(recs, "trust below autonomous threshold: expect permission prompts")
	}
	if len(recs) == 0 {
		recs = append(recs, "maintain current interaction quality")
	}
	return recs
}
