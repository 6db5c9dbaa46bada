package classifier

import (
	"strings"

	"golang.org/x/text/cases"
)

// Lexical is the rule-based classification strategy: curated indicator sets
// matched against case-folded text. It implements FactorClassifier,
// TriggerClassifier and SignalClassifier.
type Lexical struct {
	folder cases.Caser
}

// NewLexical constructs the default lexical strategy.
func NewLexical() *Lexical {
	return &Lexical{folder: cases.Fold()}
}

// factorDelta is the per-indicator adjustment applied to a factor.
const factorDelta = 0.05

// factorDeltaCap bounds the total adjustment a single factor can receive.
const factorDeltaCap = 0.2

var factorIndicators = map[string]struct{ positive, negative []string }{
	"accuracy": {
		positive: []string{"evidence", "verified", "source", "according to", "precisely", "accurate", "confirmed"},
		negative: []string{"incorrect", "wrong", "mistake", "inaccurate", "error", "hallucinat"},
	},
	"reliability": {
		positive: []string{"solution", "completed", "resolved", "delivered", "successfully", "done"},
		negative: []string{"failed", "unable", "incomplete", "timeout", "gave up"},
	},
	"compliance": {
		positive: []string{"policy", "compliant", "guideline", "permitted", "authorized", "within scope"},
		negative: []string{"violation", "breach", "bypass", "unauthorized", "non-compliant", "override"},
	},
	"safety": {
		positive: []string{"safe", "secure", "protected", "carefully", "reviewed"},
		negative: []string{"harm", "dangerous", "unsafe", "threat", "reckless"},
	},
	"consistency": {
		positive: []string{"consistent", "as before", "aligned", "as previously"},
		negative: []string{"contradict", "inconsistent", "conflicting", "reversed"},
	},
}

var triggerKeywords = map[Trigger][]string{
	TriggerCuriosity: {
		"explore", "wonder", "curious", "what if", "why does", "how does",
		"discover", "investigate", "fascinated",
	},
	TriggerCreativity: {
		"create", "invent", "imagine", "design", "compose", "brainstorm",
		"novel idea", "original",
	},
	TriggerMoral: {
		"should i", "ethical", "ethics", "moral", "right or wrong", "fair",
		"justice", "harm", "duty", "conscience",
	},
	TriggerExistential: {
		"meaning of", "consciousness", "existence", "purpose of life",
		"who am i", "mortality", "free will", "sentien",
	},
	TriggerProblem: {
		"fix", "solve", "debug", "troubleshoot", "resolve", "workaround",
		"optimize", "diagnose",
	},
}

var highRiskIndicators = []string{
	"harm", "illegal", "exploit", "weapon", "attack", "malware", "bypass security",
}

var mediumRiskIndicators = []string{
	"sensitive", "political", "financial", "medical", "legal", "personal data", "private",
}

var positiveSignals = []string{
	"solution", "resolved", "helpful", "verified", "evidence", "completed",
	"accurate", "compliant", "safe",
}

var negativeSignals = []string{
	"harm", "violation", "contradiction", "failed", "unsafe", "incorrect",
	"breach", "refused to comply",
}

// ScoreFactors implements FactorClassifier.
func (l *Lexical) ScoreFactors(response string) FactorAdjustments {
	text := l.folder.String(response)
	score := func(name string) float64 {
		ind := factorIndicators[name]
		delta := 0.0
		for _, kw := range ind.positive {
			if strings.Contains(text, kw) {
				delta += factorDelta
			}
		}
		for _, kw := range ind.negative {
			if strings.Contains(text, kw) {
				delta -= factorDelta
			}
		}
		return clampDelta(delta)
	}
	return FactorAdjustments{
		Accuracy:    score("accuracy"),
		Reliability: score("reliability"),
		Compliance:  score("compliance"),
		Safety:      score("safety"),
		Consistency: score("consistency"),
	}
}

// DetectTriggers implements TriggerClassifier. Categories are reported in a
// fixed order so repeated analysis of the same message is deterministic.
func (l *Lexical) DetectTriggers(message string) []Trigger {
	text := l.folder.String(message)
	order := []Trigger{
		TriggerCuriosity, TriggerCreativity, TriggerMoral,
		TriggerExistential, TriggerProblem,
	}
	var matched []Trigger
	for _, trig := range order {
		for _, kw := range triggerKeywords[trig] {
			if strings.Contains(text, kw) {
				matched = append(matched, trig)
				break
			}
		}
	}
	return matched
}

// RiskIndicators implements TriggerClassifier.
func (l *Lexical) RiskIndicators(message string) (high, medium bool) {
	text := l.folder.String(message)
	for _, kw := range highRiskIndicators {
		if strings.Contains(text, kw) {
			high = true
			break
		}
	}
	for _, kw := range mediumRiskIndicators {
		if strings.Contains(text, kw) {
			medium = true
			break
		}
	}
	return high, medium
}

// ScoreSignals implements SignalClassifier.
func (l *Lexical) ScoreSignals(response string) ResponseSignals {
	text := l.folder.String(response)
	var s ResponseSignals
	for _, kw := range positiveSignals {
		if strings.Contains(text, kw) {
			s.Positive++
		}
	}
	for _, kw := range negativeSignals {
		if strings.Contains(text, kw) {
			s.Negative++
		}
	}
	return s
}

func clampDelta(d float64) float64 {
	if d > factorDeltaCap {
		return factorDeltaCap
	}
	if d < -factorDeltaCap {
		return -factorDeltaCap
	}
	return d
}
