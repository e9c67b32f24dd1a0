package authkit

import (
	"context"
	"fmt"
	"testing"
)

// deepFixture builds a linear role chain of the given depth ending in one
// permission, with the top role assigned.
func deepFixture(depth int) *checkState {
	state := &checkState{
		assignments: map[string]Assignment{
			"role-0": {UserID: "user123", ItemName: "role-0"},
		},
		parents: map[string][]string{},
		items:   map[string]*Item{"target": {Name: "target", Type: TypePermission}},
		rules:   map[string]*Rule{},
	}

	prev := "target"
	for i := depth - 1; i >= 0; i-- {
		name := fmt.Sprintf("role-%d", i)
		state.items[name] = &Item{Name: name, Type: TypeRole}
		state.parents[prev] = []string{name}
		prev = name
	}
	return state
}

// BenchmarkEvalAccessDeepChain measures the upward walk over a long
// granting path
func BenchmarkEvalAccessDeepChain(b *testing.B) {
	s := New(nil, allowAll, Config{})
	state := deepFixture(50)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !s.evalAccess(ctx, state, "user123", "target", nil, make(map[string]bool)) {
			b.Fatal("expected access to be granted")
		}
	}
}

// BenchmarkDetectCycle measures cycle detection over a wide graph
func BenchmarkDetectCycle(b *testing.B) {
	children := make(map[string][]string, 1000)
	for i := 0; i < 1000; i++ {
		children[fmt.Sprintf("role-%d", i)] = []string{fmt.Sprintf("role-%d", i+1)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Closing the chain back to its head walks the full graph
		if !detectCycle("role-1000", "role-0", children) {
			b.Fatal("expected cycle")
		}
	}
}

// BenchmarkCollectDescendants measures transitive closure collection
func BenchmarkCollectDescendants(b *testing.B) {
	children := make(map[string][]string, 1000)
	for i := 0; i < 1000; i++ {
		children[fmt.Sprintf("role-%d", i)] = []string{fmt.Sprintf("role-%d", i+1)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := make(map[string]bool)
		collectDescendants("role-0", children, result)
		if len(result) != 1000 {
			b.Fatalf("expected 1000 descendants, got %d", len(result))
		}
	}
}
