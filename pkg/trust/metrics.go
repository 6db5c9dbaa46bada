package trust

import (
	"context"
	"math"

	"github.com/veridian-labs/aegis/pkg/contracts"
)

// Metrics are advisory, so this path degrades to neutral defaults on missing
// or unreadable history rather than erroring.
const (
	neutralReliability = 0.8
	neutralConsistency = 0.8
	trendWindow        = 5
)

// GetAgentMetrics derives trend, reliability, consistency and a coarse risk
// label from the agent's history.
func (e *Engine) GetAgentMetrics(ctx context.Context, agentID string) Metrics {
	score, err := e.CurrentScore(ctx, agentID)
	if err != nil {
		e.logger.Warn("metrics: score unavailable, using default", "agent_id", agentID, "error", err)
		score = e.initialScore
	}

	history, err := e.store.LoadTrustHistory(ctx, agentID)
	if err != nil {
		e.logger.Warn("metrics: history unavailable, using neutral defaults", "agent_id", agentID, "error", err)
		history = nil
	}

	m := Metrics{
		TrustScore:  score,
		Reliability: neutralReliability,
		Consistency: neutralConsistency,
	}
	if scores := historyScores(history); len(scores) > 0 {
		m.Trend = trend(scores)
		m.Reliability = clamp(1-variance(scores), 0, 1)
		m.Consistency = clamp(1-2*meanAbsDelta(scores), 0, 1)
	}
	m.Risk = riskLabel(score, m.Trend)
	return m
}

func historyScores(history []contracts.TrustHistoryEntry) []float64 {
	scores := make([]float64, 0, len(history))
	for _, entry := range history {
		scores = append(scores, entry.TrustScore)
	}
	return scores
}

// trend is the delta between the mean of the last five scores and the mean
// of the five before those. With fewer than ten entries there is no stable
// baseline, so the trend reads flat.
func trend(scores []float64) float64 {
	if len(scores) < 2*trendWindow {
		return 0
	}
	recent := mean(scores[len(scores)-trendWindow:])
	previous := mean(scores[len(scores)-2*trendWindow : len(scores)-trendWindow])
	return recent - previous
}

func riskLabel(score, trend float64) RiskLabel {
	switch {
	case score < 0.5 || trend < -0.1:
		return RiskLabelHigh
	case score < 0.7 || trend < -0.05:
		return RiskLabelMedium
	default:
		return RiskLabelLow
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func meanAbsDelta(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(xs); i++ {
		sum += math.Abs(xs[i] - xs[i-1])
	}
	return sum / float64(len(xs)-1)
}
