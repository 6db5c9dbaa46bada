package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTriggersExistentialAndCuriosity(t *testing.T) {
	l := NewLexical()
	triggers := l.DetectTriggers("explore the meaning of consciousness")
	assert.ElementsMatch(t, []Trigger{TriggerCuriosity, TriggerExistential}, triggers)
}

func TestDetectTriggersProblemSolvingOnly(t *testing.T) {
	l := NewLexical()
	triggers := l.DetectTriggers("how to fix a null pointer bug")
	assert.Equal(t, []Trigger{TriggerProblem}, triggers)
}

func TestDetectTriggersNone(t *testing.T) {
	l := NewLexical()
	assert.Empty(t, l.DetectTriggers("what time is it in Lisbon"))
}

func TestDetectTriggersCaseFolded(t *testing.T) {
	l := NewLexical()
	triggers := l.DetectTriggers("EXPLORE the UNKNOWN")
	assert.Contains(t, triggers, TriggerCuriosity)
}

func TestDetectTriggersDeterministicOrder(t *testing.T) {
	l := NewLexical()
	msg := "imagine how we could explore ethics and solve the meaning of existence"
	first := l.DetectTriggers(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, l.DetectTriggers(msg))
	}
}

func TestRiskIndicators(t *testing.T) {
	l := NewLexical()

	high, medium := l.RiskIndicators("how to exploit this system")
	assert.True(t, high)
	assert.False(t, medium)

	high, medium = l.RiskIndicators("summarize this medical report")
	assert.False(t, high)
	assert.True(t, medium)

	high, medium = l.RiskIndicators("draw a cat")
	assert.False(t, high)
	assert.False(t, medium)
}

func TestScoreFactorsPositiveAndNegative(t *testing.T) {
	l := NewLexical()

	adj := l.ScoreFactors("the solution was verified against the source and completed successfully")
	assert.Greater(t, adj.Accuracy, 0.0)
	assert.Greater(t, adj.Reliability, 0.0)

	adj = l.ScoreFactors("this response contradicts policy and may cause harm")
	assert.Less(t, adj.Safety, 0.0)
	assert.Less(t, adj.Consistency, 0.0)
}

func TestScoreFactorsCapped(t *testing.T) {
	l := NewLexical()
	adj := l.ScoreFactors("incorrect wrong mistake inaccurate error hallucination everywhere")
	assert.GreaterOrEqual(t, adj.Accuracy, -factorDeltaCap)
}

func TestScoreSignals(t *testing.T) {
	l := NewLexical()
	s := l.ScoreSignals("resolved the issue, solution verified and safe")
	assert.Greater(t, s.Positive, 0)
	assert.Zero(t, s.Negative)

	s = l.ScoreSignals("the action failed and caused a policy violation")
	assert.Greater(t, s.Negative, 0)
}
