package authkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestExprEvaluatorGrants tests a passing boolean expression
func TestExprEvaluatorGrants(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "isAuthor",
		Data:      []byte(`params.authorID == userID`),
		UpdatedAt: time.Now(),
	}
	item := NewPermission("updatePost")

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", item, map[string]any{
		"authorID": "user123",
	})

	assert.NoError(t, err)
	assert.True(t, ok)
}

// TestExprEvaluatorDenies tests a failing boolean expression
func TestExprEvaluatorDenies(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "isAuthor",
		Data:      []byte(`params.authorID == userID`),
		UpdatedAt: time.Now(),
	}
	item := NewPermission("updatePost")

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", item, map[string]any{
		"authorID": "someone-else",
	})

	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestExprEvaluatorItemEnvironment tests that item fields are visible to rules
func TestExprEvaluatorItemEnvironment(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "onlyPermissions",
		Data:      []byte(`item.type == "permission" && item.name == "updatePost"`),
		UpdatedAt: time.Now(),
	}

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", NewPermission("updatePost"), nil)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = evaluator.Evaluate(context.Background(), rule, "user123", NewRole("updatePost"), nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestExprEvaluatorNilParams tests that nil params behave as an empty map
func TestExprEvaluatorNilParams(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "alwaysTrue",
		Data:      []byte(`userID != ""`),
		UpdatedAt: time.Now(),
	}

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", NewPermission("p"), nil)
	assert.NoError(t, err)
	assert.True(t, ok)
}

// TestExprEvaluatorCompileError tests that a broken expression errors
func TestExprEvaluatorCompileError(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "broken",
		Data:      []byte(`params.authorID ==`),
		UpdatedAt: time.Now(),
	}

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", NewPermission("p"), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

// TestExprEvaluatorEmptyData tests that a rule without expression data errors
func TestExprEvaluatorEmptyData(t *testing.T) {
	evaluator := NewExprEvaluator()

	ok, err := evaluator.Evaluate(context.Background(), &Rule{Name: "empty"}, "user123", NewPermission("p"), nil)
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = evaluator.Evaluate(context.Background(), nil, "user123", NewPermission("p"), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

// TestExprEvaluatorCacheInvalidation tests that editing a rule takes effect.
// The program cache keys on the rule's update time, so a changed payload
// with a new UpdatedAt must not serve the stale compiled program.
func TestExprEvaluatorCacheInvalidation(t *testing.T) {
	evaluator := NewExprEvaluator()
	rule := &Rule{
		Name:      "flips",
		Data:      []byte(`true`),
		UpdatedAt: time.Now(),
	}
	item := NewPermission("p")

	ok, err := evaluator.Evaluate(context.Background(), rule, "user123", item, nil)
	assert.NoError(t, err)
	assert.True(t, ok)

	rule.Data = []byte(`false`)
	rule.UpdatedAt = rule.UpdatedAt.Add(time.Second)

	ok, err = evaluator.Evaluate(context.Background(), rule, "user123", item, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestEvaluatorFunc tests the function adapter
func TestEvaluatorFunc(t *testing.T) {
	var gotRule *Rule
	var gotUser string
	fn := EvaluatorFunc(func(ctx context.Context, rule *Rule, userID string, item *Item, params map[string]any) (bool, error) {
		gotRule = rule
		gotUser = userID
		return true, nil
	})

	rule := &Rule{Name: "custom"}
	ok, err := fn.Evaluate(context.Background(), rule, "user123", NewPermission("p"), nil)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rule, gotRule)
	assert.Equal(t, "user123", gotUser)
}
