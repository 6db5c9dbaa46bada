// Package policy holds the configurable gating policy: per-context fallback
// rules for the permission gate and optional custom risk rules with CEL
// conditions. The fallback behavior is deliberately configuration, not code,
// so deployments can express their own organizational policy.
package policy

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/veridian-labs/aegis/pkg/canonical"
	"github.com/veridian-labs/aegis/pkg/contracts"
)

// FallbackRule is the context-specific acceptance rule the gate consults
// when the trust fast path neither grants nor denies.
type FallbackRule struct {
	// MaxAutoRisk is the highest risk tier grantable without escalation.
	MaxAutoRisk string `yaml:"max_auto_risk" json:"max_auto_risk"`

	// MinTrust is the minimum trust score the fallback will accept.
	MinTrust float64 `yaml:"min_trust" json:"min_trust"`

	// EscalateToUser routes unresolved requests to an explicit approval
	// step instead of auto-denying.
	EscalateToUser bool `yaml:"escalate_to_user" json:"escalate_to_user"`
}

// RiskRule is a custom scored condition appended to the built-in risk rule
// table. Condition is a CEL expression over the request facts.
type RiskRule struct {
	Name      string  `yaml:"name" json:"name"`
	Condition string  `yaml:"condition" json:"condition"`
	Delta     float64 `yaml:"delta" json:"delta"`
}

// Bundle is one versioned policy configuration.
type Bundle struct {
	Version   string                                  `yaml:"version" json:"version"`
	Fallback  map[contracts.ContextType]FallbackRule  `yaml:"fallback" json:"fallback"`
	RiskRules []RiskRule                              `yaml:"risk_rules,omitempty" json:"risk_rules,omitempty"`
}

// Default returns the conservative built-in policy. Direct sessions and
// wrapped agents carry the most implicit trust and may escalate to a human;
// the remaining environments auto-grant only low-risk requests.
func Default() *Bundle {
	return &Bundle{
		Version: "1.0.0",
		Fallback: map[contracts.ContextType]FallbackRule{
			contracts.ContextDirectSession: {MaxAutoRisk: "medium", MinTrust: 0.6, EscalateToUser: true},
			contracts.ContextMultiAgent:    {MaxAutoRisk: "low", MinTrust: 0.7},
			contracts.ContextExternalAPI:   {MaxAutoRisk: "low", MinTrust: 0.8},
			contracts.ContextWrappedAgent:  {MaxAutoRisk: "medium", MinTrust: 0.65, EscalateToUser: true},
			contracts.ContextCrossPlatform: {MaxAutoRisk: "low", MinTrust: 0.75},
		},
	}
}

// Load reads a bundle from a YAML file and validates it.
func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy bundle: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML bundle.
func Parse(raw []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode policy bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks version and rule shape.
func (b *Bundle) Validate() error {
	if _, err := semver.NewVersion(b.Version); err != nil {
		return fmt.Errorf("policy bundle version %q is not semver: %w", b.Version, err)
	}
	for ctxType, rule := range b.Fallback {
		if !ctxType.Valid() {
			return fmt.Errorf("policy bundle names unknown context type %q", ctxType)
		}
		switch rule.MaxAutoRisk {
		case "low", "medium", "high":
		default:
			return fmt.Errorf("fallback rule for %s: invalid max_auto_risk %q", ctxType, rule.MaxAutoRisk)
		}
		if rule.MinTrust < 0 || rule.MinTrust > 1 {
			return fmt.Errorf("fallback rule for %s: min_trust %v outside [0,1]", ctxType, rule.MinTrust)
		}
	}
	for _, r := range b.RiskRules {
		if r.Name == "" || r.Condition == "" {
			return fmt.Errorf("risk rule missing name or condition")
		}
	}
	return nil
}

// ContentHash returns the content-addressed version of the bundle, binding
// every decision to the exact policy state evaluated.
func (b *Bundle) ContentHash() (string, error) {
	return canonical.Hash(b)
}

// FallbackFor resolves the fallback rule for a context type. Unknown
// contexts get the most conservative rule: nothing auto-grants.
func (b *Bundle) FallbackFor(ctxType contracts.ContextType) FallbackRule {
	if rule, ok := b.Fallback[ctxType]; ok {
		return rule
	}
	return FallbackRule{MaxAutoRisk: "low", MinTrust: 1.0}
}
