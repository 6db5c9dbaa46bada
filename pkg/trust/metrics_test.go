package trust

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/aegis/pkg/contracts"
	"github.com/veridian-labs/aegis/pkg/store"
)

func seedHistory(t *testing.T, ts store.TrustStore, agentID string, scores []float64) {
	t.Helper()
	ctx := context.Background()
	for _, s := range scores {
		entry := contracts.TrustHistoryEntry{
			EntryID:    uuid.NewString(),
			Timestamp:  time.Now().UTC(),
			TrustScore: s,
			Event:      "interaction_scored",
		}
		require.NoError(t, ts.RecordTrustHistoryEntry(ctx, agentID, entry))
	}
	require.NoError(t, ts.StoreTrustScore(ctx, agentID, scores[len(scores)-1]))
}

func TestGetAgentMetricsNeutralDefaults(t *testing.T) {
	e, _, _ := newTestEngine(t)

	m := e.GetAgentMetrics(context.Background(), "unknown-agent")

	assert.InDelta(t, DefaultInitialScore, m.TrustScore, 1e-9)
	assert.Zero(t, m.Trend)
	assert.InDelta(t, neutralReliability, m.Reliability, 1e-9)
	assert.InDelta(t, neutralConsistency, m.Consistency, 1e-9)
	assert.Equal(t, RiskLabelLow, m.Risk)
}

func TestGetAgentMetricsDegradesOnStoreFailure(t *testing.T) {
	kv := store.NewMemory()
	e := NewEngine(failingTrustStore{}, kv, nil, nil, nil)

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.InDelta(t, DefaultInitialScore, m.TrustScore, 1e-9)
	assert.InDelta(t, neutralReliability, m.Reliability, 1e-9)
}

func TestGetAgentMetricsImprovingTrend(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "agent-1", []float64{
		0.60, 0.61, 0.62, 0.63, 0.64,
		0.74, 0.75, 0.76, 0.77, 0.78,
	})

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.Greater(t, m.Trend, 0.0)
	assert.Equal(t, RiskLabelLow, m.Risk)
}

func TestGetAgentMetricsDecliningTrendRaisesRisk(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "agent-1", []float64{
		0.90, 0.90, 0.90, 0.90, 0.90,
		0.75, 0.74, 0.73, 0.72, 0.71,
	})

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.Less(t, m.Trend, -0.1)
	assert.Equal(t, RiskLabelHigh, m.Risk)
}

func TestGetAgentMetricsShortHistoryReadsFlat(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "agent-1", []float64{0.5, 0.9})

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.Zero(t, m.Trend)
}

func TestGetAgentMetricsLowScoreIsHighRisk(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "agent-1", []float64{0.4})

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.Equal(t, RiskLabelHigh, m.Risk)
}

func TestGetAgentMetricsMidScoreIsMediumRisk(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "agent-1", []float64{0.65})

	m := e.GetAgentMetrics(context.Background(), "agent-1")

	assert.Equal(t, RiskLabelMedium, m.Risk)
}

func TestGetAgentMetricsStableHistoryIsConsistent(t *testing.T) {
	e, ts, _ := newTestEngine(t)
	seedHistory(t, ts, "stable", []float64{0.80, 0.80, 0.80, 0.80, 0.80})
	seedHistory(t, ts, "noisy", []float64{0.95, 0.55, 0.95, 0.55, 0.95})

	stable := e.GetAgentMetrics(context.Background(), "stable")
	noisy := e.GetAgentMetrics(context.Background(), "noisy")

	assert.Greater(t, stable.Consistency, noisy.Consistency)
	assert.Greater(t, stable.Reliability, noisy.Reliability)
}
