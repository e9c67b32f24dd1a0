package authkit

import (
	"context"
)

// checkState is the in-memory snapshot one access check runs against: the
// caller's direct assignments, the parents-by-child adjacency of the whole
// edge set, and the item and rule records of the upward closure from the
// checked item. Everything is loaded up front so the walk never goes back
// to the database.
type checkState struct {
	assignments map[string]Assignment
	parents     map[string][]string
	items       map[string]*Item
	rules       map[string]*Rule
}

// CheckAccess reports whether the user may perform the named permission
// with the given parameters.
//
// The check walks upward from the permission through parent edges: an item
// grants access when its rule passes and it is either directly assigned to
// the user or one of the configured default roles; otherwise any single
// granting ancestor path suffices. A failing rule vetoes its item outright,
// direct assignment included. An unknown permission denies, it does not
// error.
//
// Example:
//
//	ok, err := service.CheckAccess(ctx, userID, "posts.update", map[string]any{
//	    "authorID": post.AuthorID,
//	})
func (s *Service) CheckAccess(ctx context.Context, userID, permissionName string, params map[string]any) (bool, error) {
	if s.config.GodID != "" && s.config.GodID == userID {
		s.logger.Trace().Str("user", userID).Str("permission", permissionName).
			Msg("bypass identity, granting")
		return true, nil
	}

	state, err := s.loadCheckState(ctx, userID, permissionName)
	if err != nil {
		return false, err
	}

	return s.evalAccess(ctx, state, userID, permissionName, params, make(map[string]bool)), nil
}

// loadCheckState snapshots everything one check needs: the user's
// assignments, the full edge projection, and the item and rule records for
// the upward closure of the target in two batched lookups.
func (s *Service) loadCheckState(ctx context.Context, userID, target string) (*checkState, error) {
	assignments, err := s.GetAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	parents, err := s.parentsByChild(ctx)
	if err != nil {
		return nil, err
	}

	closure := map[string]bool{target: true}
	stack := []string{target}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, parent := range parents[name] {
			if !closure[parent] {
				closure[parent] = true
				stack = append(stack, parent)
			}
		}
	}

	names := make([]string, 0, len(closure))
	for name := range closure {
		names = append(names, name)
	}

	items, err := s.getItemsByNames(ctx, names, 0)
	if err != nil {
		return nil, err
	}

	ruleNames := make([]string, 0)
	seenRules := make(map[string]bool)
	for _, item := range items {
		if item.RuleName != "" && !seenRules[item.RuleName] {
			seenRules[item.RuleName] = true
			ruleNames = append(ruleNames, item.RuleName)
		}
	}

	rules, err := s.getRulesByNames(ctx, ruleNames)
	if err != nil {
		return nil, err
	}

	return &checkState{
		assignments: assignments,
		parents:     parents,
		items:       items,
		rules:       rules,
	}, nil
}

// evalAccess walks upward from the checked item over an explicit stack,
// granting on the first rule-passing item that is directly assigned or a
// default role. A failing rule vetoes its item outright: the walk never
// continues into a vetoed item's parents. The seen set keeps shared
// ancestors from being walked twice.
func (s *Service) evalAccess(ctx context.Context, state *checkState, userID, name string, params map[string]any, seen map[string]bool) bool {
	stack := []string{name}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[current] {
			continue
		}
		seen[current] = true

		item := state.items[current]
		if item == nil {
			continue
		}

		s.logger.Trace().Str("user", userID).Str("item", current).
			Str("type", item.Type.String()).Msg("checking item")

		if !s.evalRule(ctx, state, userID, item, params) {
			continue
		}

		if _, ok := state.assignments[current]; ok {
			return true
		}
		if _, ok := s.defaultRoles[current]; ok {
			return true
		}

		stack = append(stack, state.parents[current]...)
	}
	return false
}

// evalRule applies an item's rule. No rule means no constraint. A missing
// rule record or an evaluation failure denies: absence of usable rule data
// must never silently allow.
func (s *Service) evalRule(ctx context.Context, state *checkState, userID string, item *Item, params map[string]any) bool {
	if item.RuleName == "" {
		return true
	}

	rule := state.rules[item.RuleName]
	if rule == nil {
		s.logger.Warn().Str("item", item.Name).Str("rule", item.RuleName).
			Msg("referenced rule not found, denying")
		return false
	}

	ok, err := s.evaluator.Evaluate(ctx, rule, userID, item, params)
	if err != nil {
		s.logger.Warn().Err(err).Str("item", item.Name).Str("rule", rule.Name).
			Msg("rule evaluation failed, denying")
		return false
	}
	return ok
}

// ============================================================================
// HIERARCHY-DERIVED QUERIES
// ============================================================================

// GetRolesByUser retrieves the roles directly assigned to a user, keyed by
// name. An empty user ID yields an empty map.
func (s *Service) GetRolesByUser(ctx context.Context, userID string) (map[string]*Item, error) {
	assignments, err := s.GetAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return map[string]*Item{}, nil
	}

	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	return s.getItemsByNames(ctx, names, TypeRole)
}

// GetPermissionsByRole retrieves every permission transitively reachable
// from the named role, keyed by name.
func (s *Service) GetPermissionsByRole(ctx context.Context, roleName string) (map[string]*Item, error) {
	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return nil, err
	}

	reachable := make(map[string]bool)
	collectDescendants(roleName, children, reachable)
	if len(reachable) == 0 {
		return map[string]*Item{}, nil
	}

	names := make([]string, 0, len(reachable))
	for name := range reachable {
		names = append(names, name)
	}
	return s.getItemsByNames(ctx, names, TypePermission)
}

// GetPermissionsByUser retrieves every permission reachable from any of the
// user's directly assigned items, keyed by name. An empty user ID yields an
// empty map.
func (s *Service) GetPermissionsByUser(ctx context.Context, userID string) (map[string]*Item, error) {
	assignments, err := s.GetAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return map[string]*Item{}, nil
	}

	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return nil, err
	}

	reachable := make(map[string]bool)
	for name := range assignments {
		collectDescendants(name, children, reachable)
	}
	if len(reachable) == 0 {
		return map[string]*Item{}, nil
	}

	names := make([]string, 0, len(reachable))
	for name := range reachable {
		names = append(names, name)
	}
	return s.getItemsByNames(ctx, names, TypePermission)
}
