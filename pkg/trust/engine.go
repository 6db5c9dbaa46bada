package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veridian-labs/aegis/pkg/classifier"
	"github.com/veridian-labs/aegis/pkg/contracts"
	"github.com/veridian-labs/aegis/pkg/observability"
	"github.com/veridian-labs/aegis/pkg/store"
)

const resultCachePrefix = "trust:result:"

// Engine maintains agent trust scores. Construct one per host application
// and share it by reference; it is safe for concurrent use. Different agents
// proceed fully in parallel; for the same agent, score mutation, history
// append and cache invalidation happen as one unit under a per-agent lock.
type Engine struct {
	store     store.TrustStore
	cache     store.KV
	extractor *Extractor
	signals   classifier.SignalClassifier
	logger    *slog.Logger
	obs       *observability.Provider

	initialScore float64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine constructs a trust engine over the given store and cache.
func NewEngine(ts store.TrustStore, cache store.KV, factors classifier.FactorClassifier, signals classifier.SignalClassifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:        ts,
		cache:        cache,
		extractor:    NewExtractor(factors),
		signals:      signals,
		logger:       logger,
		initialScore: DefaultInitialScore,
		locks:        make(map[string]*sync.Mutex),
	}
}

// SetObservability injects the telemetry provider after construction.
func (e *Engine) SetObservability(p *observability.Provider) {
	e.obs = p
}

// SetInitialScore overrides the score seeded for unknown agents.
func (e *Engine) SetInitialScore(score float64) {
	e.initialScore = clamp(score, 0, 1)
}

func (e *Engine) agentLock(agentID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[agentID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[agentID] = l
	}
	return l
}

// CurrentScore returns the agent's running trust score, seeding the default
// for agents with no recorded state.
func (e *Engine) CurrentScore(ctx context.Context, agentID string) (float64, error) {
	score, ok, err := e.store.LoadTrustScore(ctx, agentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return e.initialScore, nil
	}
	return score, nil
}

// CalculateTrustImpact derives the signed, bounded adjustment an interaction
// contributes before the learning rate is applied. An impact miscalculation
// is lower-stakes than blocking the pipeline, so any internal failure
// degrades to a neutral 0 instead of propagating.
func (e *Engine) CalculateTrustImpact(ctx context.Context, agentCtx contracts.AgentContext, interaction contracts.Interaction) (impact float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("trust impact calculation failed, degrading to neutral",
				"agent_id", agentCtx.AgentID, "interaction_id", interaction.InteractionID, "cause", r)
			impact = 0
		}
	}()
	factors := e.extractor.Extract(agentCtx, interaction)
	return e.computeImpact(agentCtx, interaction, factors)
}

// CalculateTrustScore scores one interaction: reads the current score,
// extracts factors, computes impact, commits the new clamped score with its
// history entry, and returns the cached-able result. Unlike impact
// calculation this path surfaces errors — a silently wrong score update is
// not acceptable.
func (e *Engine) CalculateTrustScore(ctx context.Context, agentCtx contracts.AgentContext, interaction contracts.Interaction) (*ManagementResult, error) {
	start := time.Now()
	var err error
	defer func() { e.obs.RecordEvaluation(ctx, "calculate_trust_score", time.Since(start), err) }()

	if agentCtx.AgentID == "" || interaction.InteractionID == "" {
		err = fmt.Errorf("trust: agent id and interaction id are required")
		return nil, err
	}

	cacheKey := resultCacheKey(agentCtx.AgentID, interaction.InteractionID)
	if raw, ok, cacheErr := e.cache.Get(ctx, cacheKey); cacheErr == nil && ok {
		var cached ManagementResult
		if decodeErr := json.Unmarshal(raw, &cached); decodeErr == nil {
			return &cached, nil
		}
		// Corrupt cache entry: fall through to a fresh computation.
		_ = e.cache.Delete(ctx, cacheKey)
	}

	l := e.agentLock(agentCtx.AgentID)
	l.Lock()
	defer l.Unlock()

	current, err := e.CurrentScore(ctx, agentCtx.AgentID)
	if err != nil {
		return nil, fmt.Errorf("trust: load score for %s: %w", agentCtx.AgentID, err)
	}

	factors := e.extractor.Extract(agentCtx, interaction)
	impact := e.computeImpact(agentCtx, interaction, factors)
	newScore := clamp(current+impact*factors.weightedSum()*learningRate, 0, 1)

	entry := contracts.TrustHistoryEntry{
		EntryID:    uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		TrustScore: newScore,
		Event:      "interaction_scored",
		Impact:     impact,
		Context:    string(agentCtx.ContextType),
	}
	if err = e.store.CommitScore(ctx, agentCtx.AgentID, newScore, entry); err != nil {
		return nil, fmt.Errorf("trust: commit score for %s: %w", agentCtx.AgentID, err)
	}
	e.obs.RecordTrustScore(ctx, newScore)

	// The score moved: every cached result for this agent is now stale.
	if err = store.DeletePrefix(ctx, e.cache, resultCachePrefix+agentCtx.AgentID+":"); err != nil {
		return nil, fmt.Errorf("trust: invalidate cache for %s: %w", agentCtx.AgentID, err)
	}

	history, err := e.store.LoadTrustHistory(ctx, agentCtx.AgentID)
	if err != nil {
		return nil, fmt.Errorf("trust: load history for %s: %w", agentCtx.AgentID, err)
	}

	result := &ManagementResult{
		CurrentTrustScore: current,
		TrustImpact:       impact,
		NewTrustScore:     newScore,
		TrustFactors:      factors,
		TrustHistory:      trailing(history, 10),
		Recommendations:   recommendations(factors, newScore),
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("trust: encode result: %w", err)
	}
	if err = e.cache.Set(ctx, cacheKey, raw); err != nil {
		return nil, fmt.Errorf("trust: cache result: %w", err)
	}
	return result, nil
}

// UpdateTrustScore applies an externally supplied impact using the same
// combination formula with neutral mid-range factors. The write, the history
// append and the cache invalidation for the agent are one transactional unit.
func (e *Engine) UpdateTrustScore(ctx context.Context, agentID string, impact float64) error {
	if agentID == "" {
		return fmt.Errorf("trust: agent id is required")
	}
	impact = clamp(impact, -1, 1)

	l := e.agentLock(agentID)
	l.Lock()
	defer l.Unlock()

	current, err := e.CurrentScore(ctx, agentID)
	if err != nil {
		return fmt.Errorf("trust: load score for %s: %w", agentID, err)
	}
	newScore := clamp(current+impact*neutralFactors().weightedSum()*learningRate, 0, 1)

	entry := contracts.TrustHistoryEntry{
		EntryID:    uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		TrustScore: newScore,
		Event:      "score_adjustment",
		Impact:     impact,
		Context:    "system",
	}
	if err := e.store.CommitScore(ctx, agentID, newScore, entry); err != nil {
		return fmt.Errorf("trust: commit score for %s: %w", agentID, err)
	}
	e.obs.RecordTrustScore(ctx, newScore)

	if err := store.DeletePrefix(ctx, e.cache, resultCachePrefix+agentID+":"); err != nil {
		return fmt.Errorf("trust: invalidate cache for %s: %w", agentID, err)
	}
	return nil
}

func resultCacheKey(agentID, interactionID string) string {
	return resultCachePrefix + agentID + ":" + interactionID
}

func trailing(history []contracts.TrustHistoryEntry, n int) []contracts.TrustHistoryEntry {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
