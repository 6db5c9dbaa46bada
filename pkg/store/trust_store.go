package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/veridian-labs/aegis/pkg/contracts"
)

// TrustStore is the persistence contract for agent-scoped trust state:
// the running score and the append-only history behind it.
type TrustStore interface {
	// StoreTrustScore writes the current score for an agent.
	StoreTrustScore(ctx context.Context, agentID string, score float64) error

	// LoadTrustScore returns the current score and whether one exists.
	LoadTrustScore(ctx context.Context, agentID string) (float64, bool, error)

	// RecordTrustHistoryEntry appends one entry to the agent's history.
	RecordTrustHistoryEntry(ctx context.Context, agentID string, entry contracts.TrustHistoryEntry) error

	// LoadTrustHistory returns the agent's history in append order.
	LoadTrustHistory(ctx context.Context, agentID string) ([]contracts.TrustHistoryEntry, error)

	// CommitScore writes the score and appends the history entry as one
	// atomic unit: concurrent readers observe either the state before the
	// commit or after it, never a score without its entry.
	CommitScore(ctx context.Context, agentID string, score float64, entry contracts.TrustHistoryEntry) error
}

const (
	scoreKeyPrefix   = "trust:score:"
	historyKeyPrefix = "trust:history:"
)

// KVTrustStore keeps trust state in an injected KV backend with a per-agent
// lock making the score write and history append atomic as a unit.
type KVTrustStore struct {
	kv KV

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKVTrustStore wraps kv.
func NewKVTrustStore(kv KV) *KVTrustStore {
	return &KVTrustStore{kv: kv, locks: make(map[string]*sync.Mutex)}
}

func (s *KVTrustStore) agentLock(agentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[agentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[agentID] = l
	}
	return l
}

func (s *KVTrustStore) StoreTrustScore(ctx context.Context, agentID string, score float64) error {
	l := s.agentLock(agentID)
	l.Lock()
	defer l.Unlock()
	return s.writeScore(ctx, agentID, score)
}

func (s *KVTrustStore) writeScore(ctx context.Context, agentID string, score float64) error {
	v := strconv.FormatFloat(score, 'f', -1, 64)
	if err := s.kv.Set(ctx, scoreKeyPrefix+agentID, []byte(v)); err != nil {
		return fmt.Errorf("store trust score for %s: %w", agentID, err)
	}
	return nil
}

func (s *KVTrustStore) LoadTrustScore(ctx context.Context, agentID string) (float64, bool, error) {
	raw, ok, err := s.kv.Get(ctx, scoreKeyPrefix+agentID)
	if err != nil {
		return 0, false, fmt.Errorf("load trust score for %s: %w", agentID, err)
	}
	if !ok {
		return 0, false, nil
	}
	score, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt trust score for %s: %w", agentID, err)
	}
	return score, true, nil
}

func (s *KVTrustStore) RecordTrustHistoryEntry(ctx context.Context, agentID string, entry contracts.TrustHistoryEntry) error {
	l := s.agentLock(agentID)
	l.Lock()
	defer l.Unlock()
	return s.appendHistory(ctx, agentID, entry)
}

func (s *KVTrustStore) appendHistory(ctx context.Context, agentID string, entry contracts.TrustHistoryEntry) error {
	history, err := s.loadHistory(ctx, agentID)
	if err != nil {
		return err
	}
	history = append(history, entry)
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode trust history for %s: %w", agentID, err)
	}
	if err := s.kv.Set(ctx, historyKeyPrefix+agentID, raw); err != nil {
		return fmt.Errorf("record trust history for %s: %w", agentID, err)
	}
	return nil
}

func (s *KVTrustStore) LoadTrustHistory(ctx context.Context, agentID string) ([]contracts.TrustHistoryEntry, error) {
	return s.loadHistory(ctx, agentID)
}

func (s *KVTrustStore) loadHistory(ctx context.Context, agentID string) ([]contracts.TrustHistoryEntry, error) {
	raw, ok, err := s.kv.Get(ctx, historyKeyPrefix+agentID)
	if err != nil {
		return nil, fmt.Errorf("load trust history for %s: %w", agentID, err)
	}
	if !ok {
		return nil, nil
	}
	var history []contracts.TrustHistoryEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("corrupt trust history for %s: %w", agentID, err)
	}
	return history, nil
}

func (s *KVTrustStore) CommitScore(ctx context.Context, agentID string, score float64, entry contracts.TrustHistoryEntry) error {
	l := s.agentLock(agentID)
	l.Lock()
	defer l.Unlock()
	if err := s.writeScore(ctx, agentID, score); err != nil {
		return err
	}
	return s.appendHistory(ctx, agentID, entry)
}
