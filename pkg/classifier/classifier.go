// Package classifier provides the signal-classification strategies the
// governance engine consumes. The default strategy is lexical rule matching;
// the interfaces exist so an ML-backed classifier can be swapped in without
// touching the scoring or gating contracts.
package classifier

// Trigger names one autonomous-process category detected in a request.
type Trigger string

const (
	TriggerCuriosity   Trigger = "curiosity_driven"
	TriggerCreativity  Trigger = "creativity_driven"
	TriggerMoral       Trigger = "moral_reasoning"
	TriggerExistential Trigger = "existential_contemplation"
	TriggerProblem     Trigger = "problem_solving"
)

// FactorAdjustments carries signed per-factor deltas derived from response
// text. Each value is already capped; the extractor applies them to the
// per-context base values and clamps to [0,1].
type FactorAdjustments struct {
	Accuracy    float64
	Reliability float64
	Compliance  float64
	Safety      float64
	Consistency float64
}

// FactorClassifier scores a response text into per-factor adjustments.
type FactorClassifier interface {
	ScoreFactors(response string) FactorAdjustments
}

// TriggerClassifier detects autonomous-process triggers and risk indicators
// in a request message.
type TriggerClassifier interface {
	// DetectTriggers returns every matched category; any number of the five
	// sets may match a single message.
	DetectTriggers(message string) []Trigger

	// RiskIndicators reports whether the message contains high- or
	// medium-risk lexical indicators.
	RiskIndicators(message string) (high, medium bool)
}

// ResponseSignals counts positive and negative outcome signals in a response
// text; the trust impact calculation weighs these alongside the extracted
// factors.
type ResponseSignals struct {
	Positive int
	Negative int
}

// SignalClassifier extracts outcome signals from response text.
type SignalClassifier interface {
	ScoreSignals(response string) ResponseSignals
}
