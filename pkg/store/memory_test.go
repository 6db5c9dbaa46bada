package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/aegis/pkg/contracts"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k1", []byte("v1")))
	v, ok, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, m.Delete(ctx, "k1"))
	_, ok, err = m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryScanPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "trust:result:a:1", []byte("1")))
	require.NoError(t, m.Set(ctx, "trust:result:a:2", []byte("2")))
	require.NoError(t, m.Set(ctx, "trust:result:b:1", []byte("3")))

	entries, err := m.ScanPrefix(ctx, "trust:result:a:")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "cache:a:1", []byte("1")))
	require.NoError(t, m.Set(ctx, "cache:a:2", []byte("2")))
	require.NoError(t, m.Set(ctx, "cache:b:1", []byte("3")))

	require.NoError(t, DeletePrefix(ctx, m, "cache:a:"))

	_, ok, _ := m.Get(ctx, "cache:a:1")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "cache:b:1")
	assert.True(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("abc")))
	v, _, _ := m.Get(ctx, "k")
	v[0] = 'z'
	v2, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v2)
}

func TestKVTrustStoreScoreAndHistory(t *testing.T) {
	ctx := context.Background()
	s := NewKVTrustStore(NewMemory())

	_, ok, err := s.LoadTrustScore(ctx, "agent-1")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := contracts.TrustHistoryEntry{
		EntryID:    "e1",
		Timestamp:  time.Now().UTC(),
		TrustScore: 0.8,
		Event:      "interaction_scored",
		Impact:     0.2,
		Context:    "direct_session",
	}
	require.NoError(t, s.CommitScore(ctx, "agent-1", 0.8, entry))

	score, ok, err := s.LoadTrustScore(ctx, "agent-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.8, score, 1e-9)

	history, err := s.LoadTrustHistory(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "e1", history[0].EntryID)
}

func TestKVTrustStoreHistoryAppendOrder(t *testing.T) {
	ctx := context.Background()
	s := NewKVTrustStore(NewMemory())

	for i := 0; i < 5; i++ {
		entry := contracts.TrustHistoryEntry{
			EntryID:    fmt.Sprintf("e%d", i),
			TrustScore: float64(i) / 10,
			Event:      "score_adjustment",
		}
		require.NoError(t, s.RecordTrustHistoryEntry(ctx, "agent-1", entry))
	}

	history, err := s.LoadTrustHistory(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, entry := range history {
		assert.Equal(t, fmt.Sprintf("e%d", i), entry.EntryID)
	}
}

func TestKVTrustStoreConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	s := NewKVTrustStore(NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := contracts.TrustHistoryEntry{EntryID: fmt.Sprintf("e%d", i), TrustScore: 0.5}
			_ = s.CommitScore(ctx, "agent-1", 0.5, entry)
		}(i)
	}
	wg.Wait()

	history, err := s.LoadTrustHistory(ctx, "agent-1")
	require.NoError(t, err)
	assert.Len(t, history, 20)
}
