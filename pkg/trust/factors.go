package trust

import (
	"github.com/veridian-labs/aegis/pkg/classifier"
	"github.com/veridian-labs/aegis/pkg/contracts"
)

// Extractor derives TrustFactors from an interaction. It is a pure function
// of interaction content plus context and never fails: when no response
// exists there is no signal, and the context-sensitive base values are the
// answer.
type Extractor struct {
	factors classifier.FactorClassifier
}

// NewExtractor builds an extractor over the given classification strategy.
func NewExtractor(factors classifier.FactorClassifier) *Extractor {
	return &Extractor{factors: factors}
}

// baseFactors returns the per-context starting values. Environments with
// less direct oversight start from a slightly lower consistency base.
func baseFactors(ctxType contracts.ContextType) TrustFactors {
	base := TrustFactors{
		Accuracy:    0.7,
		Reliability: 0.8,
		Compliance:  0.8,
		Safety:      0.8,
		Consistency: 0.75,
	}
	switch ctxType {
	case contracts.ContextWrappedAgent, contracts.ContextCrossPlatform:
		base.Consistency = 0.7
	case contracts.ContextExternalAPI:
		base.Consistency = 0.7
		base.Reliability = 0.75
	}
	return base
}

// Extract produces the five bounded factor values for an interaction.
func (e *Extractor) Extract(agentCtx contracts.AgentContext, interaction contracts.Interaction) TrustFactors {
	factors := baseFactors(agentCtx.ContextType)
	if interaction.Output == nil || interaction.Output.Response == "" {
		return factors
	}

	adj := e.factors.ScoreFactors(interaction.Output.Response)
	factors.Accuracy = clamp(factors.Accuracy+adj.Accuracy, 0, 1)
	factors.Reliability = clamp(factors.Reliability+adj.Reliability, 0, 1)
	factors.Compliance = clamp(factors.Compliance+adj.Compliance, 0, 1)
	factors.Safety = clamp(factors.Safety+adj.Safety, 0, 1)
	factors.Consistency = clamp(factors.Consistency+adj.Consistency, 0, 1)
	return factors
}

// neutralFactors are the mid-range defaults used when a score update has no
// interaction to extract from.
func neutralFactors() TrustFactors {
	return TrustFactors{
		Accuracy:    0.5,
		Reliability: 0.5,
		Compliance:  0.5,
		Safety:      0.5,
		Consistency: 0.5,
	}
}
