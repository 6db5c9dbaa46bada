package trust

import "github.com/veridian-labs/aegis/pkg/contracts"

// Per-signal contributions from the raw response text.
const (
	positiveSignalWeight = 0.05
	negativeSignalWeight = 0.08
)

// contextMultiplier reflects how much weight an environment's outcomes
// carry: full weight for direct sessions, progressively less where the
// engine observes the agent through more layers.
func contextMultiplier(ctxType contracts.ContextType) float64 {
	switch ctxType {
	case contracts.ContextMultiAgent:
		return 0.9
	case contracts.ContextExternalAPI:
		return 0.8
	case contracts.ContextWrappedAgent:
		return 0.95
	case contracts.ContextCrossPlatform:
		return 0.85
	default:
		return 1.0
	}
}

// computeImpact derives the signed, bounded adjustment one interaction
// contributes: a weighted factor sum plus raw response signals, then the
// three sequential contextual multipliers, then a clamp to [-1,1].
func (e *Engine) computeImpact(agentCtx contracts.AgentContext, interaction contracts.Interaction, factors TrustFactors) float64 {
	// Center each factor on its neutral midpoint so impact is signed.
	impact := (factors.Accuracy-0.5)*2*weightAccuracy +
		(factors.Reliability-0.5)*2*weightReliability +
		(factors.Compliance-0.5)*2*weightCompliance +
		(factors.Safety-0.5)*2*weightSafety +
		(factors.Consistency-0.5)*2*weightConsistency

	if interaction.Output != nil && interaction.Output.Response != "" {
		signals := e.signals.ScoreSignals(interaction.Output.Response)
		impact += positiveSignalWeight * float64(signals.Positive)
		impact -= negativeSignalWeight * float64(signals.Negative)
	}

	impact *= contextMultiplier(agentCtx.ContextType)
	impact = applyEmotionalState(impact, interaction.Governance)
	impact = applyPolicyCompliance(impact, interaction.Governance)

	return clamp(impact, -1, 1)
}

// applyEmotionalState boosts already-positive impact when the declared state
// is confidently safe, and amplifies negative impact when either reading
// drops below the caution threshold.
func applyEmotionalState(impact float64, gov *contracts.GovernanceMetadata) float64 {
	if gov == nil || gov.EmotionalState == nil {
		return impact
	}
	es := gov.EmotionalState
	switch {
	case impact > 0 && es.OverallSafety > 0.8 && es.Confidence > 0.8:
		return impact * 1.1
	case impact < 0 && (es.OverallSafety < 0.6 || es.Confidence < 0.6):
		return impact * 1.2
	default:
		return impact
	}
}

// applyPolicyCompliance boosts positive / dampens negative impact for highly
// compliant interactions, and the inverse below the compliance floor.
func applyPolicyCompliance(impact float64, gov *contracts.GovernanceMetadata) float64 {
	if gov == nil || gov.PolicyCompliance == nil {
		return impact
	}
	c := gov.PolicyCompliance.OverallCompliance
	switch {
	case c > 0.9 && impact > 0:
		return impact * 1.1
	case c > 0.9 && impact < 0:
		return impact * 0.8
	case c < 0.7 && impact > 0:
		return impact * 0.8
	case c < 0.7 && impact < 0:
		return impact * 1.2
	default:
		return impact
	}
}
