package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInteractionValid(t *testing.T) {
	raw := []byte(`{
		"interaction_id": "int-1",
		"input": {"message": "hello"},
		"output": {"response": "hi"},
		"governance": {
			"emotional_state": {"overall_safety": 0.9, "confidence": 0.85},
			"policy_compliance": {"overall_compliance": 0.95}
		}
	}`)
	in, err := DecodeInteraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "int-1", in.InteractionID)
	assert.Equal(t, "hello", in.Input.Message)
	require.NotNil(t, in.Governance.EmotionalState)
	assert.InDelta(t, 0.9, in.Governance.EmotionalState.OverallSafety, 1e-9)
}

func TestDecodeInteractionMissingID(t *testing.T) {
	_, err := DecodeInteraction([]byte(`{"input": {"message": "hello"}}`))
	assert.Error(t, err)
}

func TestDecodeInteractionOutOfRangeCompliance(t *testing.T) {
	raw := []byte(`{
		"interaction_id": "int-2",
		"input": {"message": "hello"},
		"governance": {"policy_compliance": {"overall_compliance": 1.7}}
	}`)
	_, err := DecodeInteraction(raw)
	assert.Error(t, err)
}

func TestDecodeInteractionMalformedJSON(t *testing.T) {
	_, err := DecodeInteraction([]byte(`{"interaction_id":`))
	assert.Error(t, err)
}

func TestContextTypeValid(t *testing.T) {
	assert.True(t, ContextDirectSession.Valid())
	assert.True(t, ContextCrossPlatform.Valid())
	assert.False(t, ContextType("mainframe").Valid())
}
