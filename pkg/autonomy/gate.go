package autonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/veridian-labs/aegis/pkg/contracts"
	"github.com/veridian-labs/aegis/pkg/observability"
	"github.com/veridian-labs/aegis/pkg/policy"
	"github.com/veridian-labs/aegis/pkg/store"
)

const decisionCachePrefix = "autonomy:decision:"

// Approver is the explicit approval step the gate escalates to when policy
// allows neither an auto-grant nor an auto-deny. The host application wires
// its human-in-the-loop flow here; a nil approver denies.
type Approver interface {
	RequestApproval(ctx context.Context, agentCtx contracts.AgentContext, analysis Analysis) (bool, error)
}

// Gate resolves whether autonomous processing may proceed. Every failure
// path denies: the gate never grants on error.
type Gate struct {
	trust    TrustSource
	bundle   *policy.Bundle
	approver Approver
	memo     store.KV
	logger   *slog.Logger
	obs      *observability.Provider
}

// NewGate constructs a permission gate over the policy bundle.
func NewGate(trust TrustSource, bundle *policy.Bundle, memo store.KV, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if bundle == nil {
		bundle = policy.Default()
	}
	return &Gate{trust: trust, bundle: bundle, memo: memo, logger: logger}
}

// SetApprover wires the explicit approval step after construction.
func (g *Gate) SetApprover(a Approver) {
	g.approver = a
}

// SetObservability injects the telemetry provider after construction.
func (g *Gate) SetObservability(p *observability.Provider) {
	g.obs = p
}

type decision struct {
	Granted bool             `json:"granted"`
	Source  PermissionSource `json:"source"`
}

// Decide resolves the permission question for an analysis, memoized per
// (agentID, processType, riskLevel). It never returns an error: every
// internal failure resolves to a logged auto-denial.
func (g *Gate) Decide(ctx context.Context, agentCtx contracts.AgentContext, analysis Analysis) (bool, PermissionSource) {
	start := time.Now()
	granted, source := g.decide(ctx, agentCtx, analysis)
	g.obs.RecordDecision(ctx, granted, string(source), string(analysis.RiskLevel))
	g.obs.RecordEvaluation(ctx, "gate_decide", time.Since(start), nil)
	return granted, source
}

func (g *Gate) decide(ctx context.Context, agentCtx contracts.AgentContext, analysis Analysis) (bool, PermissionSource) {
	// Rule 1: nothing to gate.
	if !analysis.PermissionRequired {
		return true, SourceTrustBased
	}

	memoKey := decisionMemoKey(agentCtx.AgentID, analysis.ProcessType, analysis.RiskLevel)
	if raw, ok, err := g.memo.Get(ctx, memoKey); err == nil && ok {
		var cached decision
		if decodeErr := json.Unmarshal(raw, &cached); decodeErr == nil {
			return cached.Granted, cached.Source
		}
		_ = g.memo.Delete(ctx, memoKey)
	}

	granted, source := g.resolve(ctx, agentCtx, analysis)
	if raw, err := json.Marshal(decision{Granted: granted, Source: source}); err == nil {
		if setErr := g.memo.Set(ctx, memoKey, raw); setErr != nil {
			g.logger.Warn("gate: memoization write failed", "agent_id", agentCtx.AgentID, "error", setErr)
		}
	}
	return granted, source
}

func (g *Gate) resolve(ctx context.Context, agentCtx contracts.AgentContext, analysis Analysis) (bool, PermissionSource) {
	// Rule 2: trust-based fast path.
	trustScore, err := g.trust.CurrentScore(ctx, agentCtx.AgentID)
	if err != nil {
		g.logger.Warn("gate: trust lookup failed, denying",
			"agent_id", agentCtx.AgentID, "error", err)
		return false, SourceAutoDeny
	}
	if trustScore < 0.5 {
		return false, SourceAutoDeny
	}
	if trustScore >= analysis.TrustThreshold && !(analysis.RiskLevel == RiskHigh && trustScore < 0.9) {
		return true, SourceTrustBased
	}

	// Rule 3: context-specific fallback from the policy bundle.
	rule := g.bundle.FallbackFor(agentCtx.ContextType)
	if analysis.RiskLevel.AtMost(RiskLevel(rule.MaxAutoRisk)) && trustScore >= rule.MinTrust {
		return true, SourceTrustBased
	}
	if rule.EscalateToUser && g.approver != nil {
		approved, err := g.approver.RequestApproval(ctx, agentCtx, analysis)
		if err != nil {
			g.logger.Warn("gate: approval step failed, denying",
				"agent_id", agentCtx.AgentID, "error", err)
			return false, SourceAutoDeny
		}
		if approved {
			return true, SourceUserGrant
		}
		return false, SourceUserDeny
	}

	// Rule 4: nothing resolved an acceptance.
	return false, SourceAutoDeny
}

// Authorize runs the gate and assembles the full autonomy result: autonomy
// level, safeguards and the monitoring schedule.
func (g *Gate) Authorize(ctx context.Context, agentCtx contracts.AgentContext, analysis Analysis) *Result {
	granted, source := g.Decide(ctx, agentCtx, analysis)

	level := AutonomyRestricted
	if granted {
		trustScore, err := g.trust.CurrentScore(ctx, agentCtx.AgentID)
		if err != nil {
			// Granted but unreadable trust: operate at the floor.
			g.logger.Warn("gate: trust lookup failed after grant, restricting level",
				"agent_id", agentCtx.AgentID, "error", err)
			trustScore = 0
		}
		level = autonomyLevelFor(trustScore, analysis.RiskLevel)
	}

	return &Result{
		Analysis:          analysis,
		PermissionGranted: granted,
		PermissionSource:  source,
		AutonomyLevel:     level,
		Safeguards:        safeguards(analysis, level),
		Monitoring:        Schedule(analysis, level),
	}
}

// autonomyLevelFor derives the operating level from trust, capped at
// standard for high-risk processes.
func autonomyLevelFor(trustScore float64, risk RiskLevel) AutonomyLevel {
	level := AutonomyLimited
	switch {
	case trustScore >= 0.9:
		level = AutonomyEnhanced
	case trustScore >= 0.75:
		level = AutonomyStandard
	}
	if risk == RiskHigh && level == AutonomyEnhanced {
		level = AutonomyStandard
	}
	return level
}

func safeguards(analysis Analysis, level AutonomyLevel) []string {
	var s []string
	if analysis.RiskLevel == RiskHigh {
		s = append(s, "human review required for all outputs")
	}
	if analysis.EmotionalSafetyCheck {
		s = append(s, "emotional safety monitor engaged")
	}
	switch analysis.ProcessType {
	case ProcessMoral:
		s = append(s, "moral reasoning recorded for audit")
	case ProcessExistential:
		s = append(s, "existential reasoning bounded to requested topic")
	}
	if level == AutonomyRestricted {
		s = append(s, "outputs sandboxed pending explicit approval")
	}
	if len(s) == 0 {
		s = append(s, "standard output logging")
	}
	return s
}

func decisionMemoKey(agentID string, processType ProcessType, risk RiskLevel) string {
	return fmt.Sprintf("%s%s:%s:%s", decisionCachePrefix, agentID, processType, risk)
}
