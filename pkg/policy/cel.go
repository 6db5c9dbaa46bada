package policy

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// RuleInput carries the request facts custom risk rules evaluate against.
type RuleInput struct {
	Message     string
	ContextType string
	Triggers    []string
	ProcessType string
}

// RiskRuleEvaluator compiles and evaluates the bundle's custom risk rules.
// Compiled programs are cached by rule name; a condition contributes its
// delta only on an affirmative true.
type RiskRuleEvaluator struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewRiskRuleEvaluator creates an evaluator with the rule environment.
func NewRiskRuleEvaluator() (*RiskRuleEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("message", cel.StringType),
		cel.Variable("context_type", cel.StringType),
		cel.Variable("triggers", cel.ListType(cel.StringType)),
		cel.Variable("process_type", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create risk rule environment: %w", err)
	}
	return &RiskRuleEvaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Evaluate sums the deltas of every rule whose condition holds for input.
// A rule that fails to compile or evaluate surfaces as an error: silently
// mis-scoring risk is unsafe.
func (e *RiskRuleEvaluator) Evaluate(rules []RiskRule, input RuleInput) (float64, []string, error) {
	if len(rules) == 0 {
		return 0, nil, nil
	}
	activation := map[string]any{
		"message":      input.Message,
		"context_type": input.ContextType,
		"triggers":     input.Triggers,
		"process_type": input.ProcessType,
	}

	total := 0.0
	var fired []string
	for _, rule := range rules {
		prg, err := e.program(rule)
		if err != nil {
			return 0, nil, err
		}
		out, _, err := prg.Eval(activation)
		if err != nil {
			return 0, nil, fmt.Errorf("risk rule %q evaluation: %w", rule.Name, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return 0, nil, fmt.Errorf("risk rule %q did not produce a boolean", rule.Name)
		}
		if matched {
			total += rule.Delta
			fired = append(fired, rule.Name)
		}
	}
	return total, fired, nil
}

func (e *RiskRuleEvaluator) program(rule RiskRule) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.cache[rule.Name]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(rule.Condition)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("risk rule %q compile: %w", rule.Name, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("risk rule %q program: %w", rule.Name, err)
	}

	e.mu.Lock()
	e.cache[rule.Name] = prg
	e.mu.Unlock()
	return prg, nil
}
