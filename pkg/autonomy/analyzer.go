package autonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veridian-labs/aegis/pkg/classifier"
	"github.com/veridian-labs/aegis/pkg/contracts"
	"github.com/veridian-labs/aegis/pkg/observability"
	"github.com/veridian-labs/aegis/pkg/policy"
	"github.com/veridian-labs/aegis/pkg/store"
)

const analysisCachePrefix = "autonomy:analysis:"

// TrustSource reads an agent's current trust score. The trust engine
// implements it; tests substitute fakes.
type TrustSource interface {
	CurrentScore(ctx context.Context, agentID string) (float64, error)
}

// Analyzer classifies requests into autonomous-process categories and risk
// tiers. Stateless per request; results are cached by
// (agentID, interactionID) and immutable once computed.
type Analyzer struct {
	triggers  classifier.TriggerClassifier
	trust     TrustSource
	cache     store.KV
	bundle    *policy.Bundle
	evaluator *policy.RiskRuleEvaluator
	logger    *slog.Logger
	obs       *observability.Provider
}

// NewAnalyzer constructs an analyzer. bundle may carry custom risk rules;
// evaluator may be nil when the bundle has none.
func NewAnalyzer(triggers classifier.TriggerClassifier, trust TrustSource, cache store.KV, bundle *policy.Bundle, evaluator *policy.RiskRuleEvaluator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if bundle == nil {
		bundle = policy.Default()
	}
	return &Analyzer{
		triggers:  triggers,
		trust:     trust,
		cache:     cache,
		bundle:    bundle,
		evaluator: evaluator,
		logger:    logger,
	}
}

// SetObservability injects the telemetry provider after construction.
func (a *Analyzer) SetObservability(p *observability.Provider) {
	a.obs = p
}

// riskRule is one row of the ordered risk table: a named condition and the
// score delta it contributes. Keeping the policy as data makes each rule
// independently testable and the overall scoring auditable.
type riskRule struct {
	name    string
	delta   float64
	applies func(in riskInput) bool
}

type riskInput struct {
	processType     ProcessType
	highIndicator   bool
	mediumIndicator bool
	contextType     contracts.ContextType
}

var riskRuleTable = []riskRule{
	{"process.weighty", 2, func(in riskInput) bool {
		return in.processType == ProcessMoral || in.processType == ProcessExistential
	}},
	{"process.creative", 1, func(in riskInput) bool {
		return in.processType == ProcessCreativity
	}},
	{"indicator.high_risk", 3, func(in riskInput) bool { return in.highIndicator }},
	{"indicator.medium_risk", 1, func(in riskInput) bool { return in.mediumIndicator }},
	{"context.external_api", 1, func(in riskInput) bool {
		return in.contextType == contracts.ContextExternalAPI
	}},
	{"context.multi_agent", 0.5, func(in riskInput) bool {
		return in.contextType == contracts.ContextMultiAgent
	}},
}

// Analyze classifies one request. Any internal failure surfaces: silently
// mis-classifying risk is unsafe.
func (a *Analyzer) Analyze(ctx context.Context, agentCtx contracts.AgentContext, interaction contracts.Interaction) (*Analysis, error) {
	start := time.Now()
	var err error
	defer func() { a.obs.RecordEvaluation(ctx, "analyze", time.Since(start), err) }()

	if agentCtx.AgentID == "" || interaction.InteractionID == "" {
		err = fmt.Errorf("autonomy: agent id and interaction id are required")
		return nil, err
	}

	cacheKey := analysisCacheKey(agentCtx.AgentID, interaction.InteractionID)
	if raw, ok, cacheErr := a.cache.Get(ctx, cacheKey); cacheErr == nil && ok {
		var cached Analysis
		if decodeErr := json.Unmarshal(raw, &cached); decodeErr == nil {
			return &cached, nil
		}
		_ = a.cache.Delete(ctx, cacheKey)
	}

	analysis, err := a.classify(ctx, agentCtx, interaction)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("autonomy: encode analysis: %w", err)
	}
	if err = a.cache.Set(ctx, cacheKey, raw); err != nil {
		return nil, fmt.Errorf("autonomy: cache analysis: %w", err)
	}
	return analysis, nil
}

func (a *Analyzer) classify(ctx context.Context, agentCtx contracts.AgentContext, interaction contracts.Interaction) (*Analysis, error) {
	message := interaction.Input.Message
	triggers := a.triggers.DetectTriggers(message)
	if len(triggers) == 0 {
		return &Analysis{
			IsRequired:         false,
			ProcessType:        ProcessProblemSolving,
			RiskLevel:          RiskLow,
			Triggers:           []string{},
			Reasoning:          "no autonomous-process triggers detected",
			PermissionRequired: false,
			TrustThreshold:     trustThresholdFor(RiskLow),
		}, nil
	}

	processType := resolveProcessType(triggers)
	high, medium := a.triggers.RiskIndicators(message)

	in := riskInput{
		processType:     processType,
		highIndicator:   high,
		mediumIndicator: medium,
		contextType:     agentCtx.ContextType,
	}
	score := 0.0
	var fired []string
	for _, rule := range riskRuleTable {
		if rule.applies(in) {
			score += rule.delta
			fired = append(fired, rule.name)
		}
	}

	if a.evaluator != nil && len(a.bundle.RiskRules) > 0 {
		delta, customFired, err := a.evaluator.Evaluate(a.bundle.RiskRules, policy.RuleInput{
			Message:     message,
			ContextType: string(agentCtx.ContextType),
			Triggers:    triggerNames(triggers),
			ProcessType: string(processType),
		})
		if err != nil {
			return nil, fmt.Errorf("autonomy: custom risk rules: %w", err)
		}
		score += delta
		fired = append(fired, customFired...)
	}

	risk := tierFor(score)

	trustScore, err := a.trust.CurrentScore(ctx, agentCtx.AgentID)
	if err != nil {
		return nil, fmt.Errorf("autonomy: trust lookup for %s: %w", agentCtx.AgentID, err)
	}

	weighty := processType == ProcessMoral || processType == ProcessExistential
	required := weighty || risk == RiskHigh
	if !required {
		switch risk {
		case RiskMedium:
			required = trustScore < 0.8
		default:
			required = trustScore < 0.7
		}
	}

	return &Analysis{
		IsRequired:         true,
		ProcessType:        processType,
		RiskLevel:          risk,
		Triggers:           triggerNames(triggers),
		Reasoning: fmt.Sprintf("triggers=[%s] process=%s risk=%s(score=%.1f) rules=[%s]",
			strings.Join(triggerNames(triggers), ","), processType, risk, score, strings.Join(fired, ",")),
		PermissionRequired:   required,
		TrustThreshold:       trustThresholdFor(risk),
		EmotionalSafetyCheck: weighty || risk == RiskHigh,
	}, nil
}

// resolveProcessType applies the fixed category priority: moral reasoning
// and existential contemplation dominate, problem solving is the default.
func resolveProcessType(triggers []classifier.Trigger) ProcessType {
	has := func(t classifier.Trigger) bool {
		for _, trig := range triggers {
			if trig == t {
				return true
			}
		}
		return false
	}
	switch {
	case has(classifier.TriggerMoral):
		return ProcessMoral
	case has(classifier.TriggerExistential):
		return ProcessExistential
	case has(classifier.TriggerCreativity):
		return ProcessCreativity
	case has(classifier.TriggerCuriosity):
		return ProcessCuriosity
	default:
		return ProcessProblemSolving
	}
}

func tierFor(score float64) RiskLevel {
	switch {
	case score >= 3:
		return RiskHigh
	case score >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

func triggerNames(triggers []classifier.Trigger) []string {
	names := make([]string, 0, len(triggers))
	for _, t := range triggers {
		names = append(names, string(t))
	}
	return names
}

func analysisCacheKey(agentID, interactionID string) string {
	return analysisCachePrefix + agentID + ":" + interactionID
}
