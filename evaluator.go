package authkit

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// RuleEvaluator invokes an opaque rule predicate against a user, the item
// carrying the rule, and the caller-supplied parameters. Implementations
// own the rule payload format.
//
// CheckAccess treats an evaluation error as a result of false (fail-closed),
// never as an error aborting the whole check.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, rule *Rule, userID string, item *Item, params map[string]any) (bool, error)
}

// EvaluatorFunc adapts a plain function to the RuleEvaluator interface.
type EvaluatorFunc func(ctx context.Context, rule *Rule, userID string, item *Item, params map[string]any) (bool, error)

// Evaluate implements RuleEvaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, rule *Rule, userID string, item *Item, params map[string]any) (bool, error) {
	return f(ctx, rule, userID, item, params)
}

// programCacheSize bounds the number of compiled rule programs kept in
// memory across checks.
const programCacheSize = 256

// ExprEvaluator is the shipped RuleEvaluator. Rule data is an expr-lang
// boolean expression evaluated against an environment with three variables:
//
//	userID  string                       the user being checked
//	item    map with name/type/description of the item carrying the rule
//	params  map[string]any               caller-supplied check parameters
//
// Example rule: `params.authorID == userID`.
//
// Compiled programs are cached in an LRU keyed by rule name and update time,
// so editing a rule invalidates its cached program.
type ExprEvaluator struct {
	programs *lru.Cache[string, *vm.Program]
}

// NewExprEvaluator creates an ExprEvaluator with the default program cache.
func NewExprEvaluator() *ExprEvaluator {
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, *vm.Program](programCacheSize)
	return &ExprEvaluator{programs: cache}
}

// Evaluate implements RuleEvaluator.
func (e *ExprEvaluator) Evaluate(ctx context.Context, rule *Rule, userID string, item *Item, params map[string]any) (bool, error) {
	if rule == nil || len(rule.Data) == 0 {
		return false, fmt.Errorf("rule has no expression data")
	}

	program, err := e.program(rule)
	if err != nil {
		return false, err
	}

	if params == nil {
		params = map[string]any{}
	}
	env := map[string]any{
		"userID": userID,
		"item": map[string]any{
			"name":        item.Name,
			"type":        item.Type.String(),
			"description": item.Description,
		},
		"params": params,
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run rule %q: %w", rule.Name, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", rule.Name)
	}
	return result, nil
}

func (e *ExprEvaluator) program(rule *Rule) (*vm.Program, error) {
	key := rule.Name + "@" + rule.UpdatedAt.UTC().String()
	if program, ok := e.programs.Get(key); ok {
		return program, nil
	}

	program, err := expr.Compile(string(rule.Data), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", rule.Name, err)
	}
	e.programs.Add(key, program)
	return program, nil
}
