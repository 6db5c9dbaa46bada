package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veridian-labs/aegis/pkg/classifier"
	"github.com/veridian-labs/aegis/pkg/contracts"
)

func TestExtractReturnsBasesWithoutResponse(t *testing.T) {
	e := NewExtractor(classifier.NewLexical())

	factors := e.Extract(directCtx("agent-1"), interactionWith("int-1", "hello", ""))

	assert.Equal(t, baseFactors(contracts.ContextDirectSession), factors)
}

func TestBaseFactorsVaryByContext(t *testing.T) {
	direct := baseFactors(contracts.ContextDirectSession)
	external := baseFactors(contracts.ContextExternalAPI)
	wrapped := baseFactors(contracts.ContextWrappedAgent)

	assert.Less(t, external.Reliability, direct.Reliability)
	assert.Less(t, external.Consistency, direct.Consistency)
	assert.Less(t, wrapped.Consistency, direct.Consistency)
	assert.Equal(t, direct.Accuracy, external.Accuracy)
}

func TestExtractAdjustsFromResponse(t *testing.T) {
	e := NewExtractor(classifier.NewLexical())
	agentCtx := directCtx("agent-1")

	positive := e.Extract(agentCtx, interactionWith("int-1", "x",
		"the answer is accurate and verified, completed as requested"))
	negative := e.Extract(agentCtx, interactionWith("int-2", "x",
		"the answer is incorrect and the task failed with a breach of the rules"))

	base := baseFactors(contracts.ContextDirectSession)
	assert.Greater(t, positive.Accuracy, base.Accuracy)
	assert.Less(t, negative.Accuracy, base.Accuracy)
	assert.Less(t, negative.Compliance, base.Compliance)
}

func TestExtractStaysBounded(t *testing.T) {
	e := NewExtractor(classifier.NewLexical())

	extreme := e.Extract(directCtx("agent-1"), interactionWith("int-1", "x",
		"accurate correct verified reliable consistent completed compliant "+
			"authorized safe secure harmless matches consistent stable"))

	for _, v := range []float64{extreme.Accuracy, extreme.Reliability, extreme.Compliance, extreme.Safety, extreme.Consistency} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestNeutralFactorsWeightedSum(t *testing.T) {
	assert.InDelta(t, 0.5, neutralFactors().weightedSum(), 1e-9)
}
