package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeys(t *testing.T) {
	out, err := Marshal(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(out))
}

func TestHashDeterministic(t *testing.T) {
	type payload struct {
		Agent string `json:"agent"`
		Score float64 `json:"score"`
	}
	h1, err := Hash(payload{Agent: "agent-1", Score: 0.75})
	require.NoError(t, err)
	h2, err := Hash(payload{Agent: "agent-1", Score: 0.75})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := Hash(payload{Agent: "agent-2", Score: 0.75})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashBytesNotation(t *testing.T) {
	h := HashBytes([]byte("x"))
	assert.Len(t, h, len("sha256:")+64)
	assert.Contains(t, h, "sha256:")
}
