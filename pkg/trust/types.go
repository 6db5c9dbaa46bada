// Package trust computes bounded trust scores for autonomous agents from the
// outcome of their interactions. Scores live in [0,1], every mutation is
// clamped, and each mutation appends an immutable history entry.
package trust

import "github.com/veridian-labs/aegis/pkg/contracts"

// TrustFactors are the five normalized signal values extracted per
// interaction. Computed fresh each time; never persisted standalone.
type TrustFactors struct {
	Accuracy    float64 `json:"accuracy"`
	Reliability float64 `json:"reliability"`
	Compliance  float64 `json:"compliance"`
	Safety      float64 `json:"safety"`
	Consistency float64 `json:"consistency"`
}

// ManagementResult is the derived outcome of scoring one interaction.
// Cached by (agentID, interactionID); invalidated on any score update for
// the agent.
type ManagementResult struct {
	CurrentTrustScore float64                       `json:"current_trust_score"`
	TrustImpact       float64                       `json:"trust_impact"`
	NewTrustScore     float64                       `json:"new_trust_score"`
	TrustFactors      TrustFactors                  `json:"trust_factors"`
	TrustHistory      []contracts.TrustHistoryEntry `json:"trust_history"`
	Recommendations   []string                      `json:"recommendations"`
}

// RiskLabel is the advisory risk classification attached to agent metrics.
type RiskLabel string

const (
	RiskLabelLow    RiskLabel = "low"
	RiskLabelMedium RiskLabel = "medium"
	RiskLabelHigh   RiskLabel = "high"
)

// Metrics are advisory statistics derived from an agent's history. They
// degrade to neutral defaults rather than erroring when history is thin.
type Metrics struct {
	TrustScore  float64   `json:"trust_score"`
	Trend       float64   `json:"trend"`
	Reliability float64   `json:"reliability"`
	Consistency float64   `json:"consistency"`
	Risk        RiskLabel `json:"risk"`
}

// Scoring constants. The learning rate damps how far a single interaction
// can move the running score.
const (
	learningRate = 0.1

	weightAccuracy    = 0.25
	weightReliability = 0.25
	weightCompliance  = 0.25
	weightSafety      = 0.15
	weightConsistency = 0.10

	// DefaultInitialScore seeds agents with no recorded history.
	DefaultInitialScore = 0.7
)

// weightedSum folds the five factors with their fixed weights.
func (f TrustFactors) weightedSum() float64 {
	return f.Accuracy*weightAccuracy +
		f.Reliability*weightReliability +
		f.Compliance*weightCompliance +
		f.Safety*weightSafety +
		f.Consistency*weightConsistency
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
