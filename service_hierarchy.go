package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// HIERARCHY OPERATIONS
// ============================================================================

// AddChild inserts a parent-child edge into the item hierarchy after
// validating the graph invariants: no self-edges, a permission can never be
// the parent of a role, and the edge must not close a cycle. Inserting an
// edge that already exists is a no-op.
func (s *Service) AddChild(ctx context.Context, parent, child string) error {
	if parent == child {
		return NewError(ErrInvalidArgument, "cannot add an item as a child of itself").
			WithItem(parent)
	}

	unlock := s.locks.lock(parent, child)
	defer unlock()

	parentItem, err := s.GetItem(ctx, parent)
	if err != nil {
		return err
	}
	if parentItem == nil {
		return NewError(ErrNotFound, "parent item does not exist").WithItem(parent)
	}

	childItem, err := s.GetItem(ctx, child)
	if err != nil {
		return err
	}
	if childItem == nil {
		return NewError(ErrNotFound, "child item does not exist").WithItem(child)
	}

	if parentItem.IsPermission() && childItem.IsRole() {
		return NewError(ErrInvalidArgument, "cannot add a role as a child of a permission").
			WithItem(parent).WithChild(child)
	}

	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return err
	}
	if detectCycle(parent, child, children) {
		return NewError(ErrCycleDetected, "edge would close a loop in the hierarchy").
			WithItem(parent).WithChild(child)
	}

	edge := &ItemChild{Parent: parent, Child: child}
	result, err := s.idb(ctx).NewInsert().Model(edge).
		On("CONFLICT (parent, child) DO NOTHING").
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "AddChild").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to store hierarchy edge").
			WithItem(parent).WithChild(child)
	}

	s.audit(ctx, &AuditEntry{
		Action:   AuditActionChildAdded,
		ItemName: parent,
		Metadata: map[string]any{"child": child},
	})
	return nil
}

// RemoveChild deletes the parent-child edge if present and reports whether
// an edge was deleted.
func (s *Service) RemoveChild(ctx context.Context, parent, child string) (bool, error) {
	unlock := s.locks.lock(parent, child)
	defer unlock()

	result, err := s.idb(ctx).NewDelete().Table("auth_item_children").
		Where("parent = ? AND child = ?", parent, child).Exec(ctx)
	if err := dbkit.WithErr(result, err, "RemoveChild").Err(); err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.audit(ctx, &AuditEntry{
		Action:   AuditActionChildRemoved,
		ItemName: parent,
		Metadata: map[string]any{"child": child},
	})
	return true, nil
}

// RemoveChildren deletes every edge where the given item is the parent.
func (s *Service) RemoveChildren(ctx context.Context, parent string) error {
	unlock := s.locks.lock(parent)
	defer unlock()

	result, err := s.idb(ctx).NewDelete().Table("auth_item_children").
		Where("parent = ?", parent).Exec(ctx)
	if err := dbkit.WithErr(result, err, "RemoveChildren").Err(); err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{Action: AuditActionChildRemoved, ItemName: parent})
	return nil
}

// RemoveChildrenByType deletes the edges from parent to those of its
// children whose own item type matches itemType.
func (s *Service) RemoveChildrenByType(ctx context.Context, parent string, itemType ItemType) error {
	if !itemType.Valid() {
		return NewError(ErrInvalidArgument, "item type must be role or permission")
	}

	unlock := s.locks.lock(parent)
	defer unlock()

	result, err := s.idb(ctx).NewDelete().Table("auth_item_children").
		Where("parent = ? AND child IN (SELECT name FROM auth_items WHERE type = ?)", parent, itemType).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "RemoveChildrenByType").Err(); err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{
		Action:   AuditActionChildRemoved,
		ItemName: parent,
		Metadata: map[string]any{"type": itemType.String()},
	})
	return nil
}

// HasChild reports whether a direct parent-child edge exists.
func (s *Service) HasChild(ctx context.Context, parent, child string) bool {
	exists, err := dbkit.Exists[ItemChild](ctx, s.idb(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("parent = ? AND child = ?", parent, child)
	})
	if err != nil {
		return false
	}
	return exists
}

// GetChildren retrieves the direct children of an item, resolved to full
// item records and keyed by name.
func (s *Service) GetChildren(ctx context.Context, name string) (map[string]*Item, error) {
	var items []Item
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&items).
		Where("name IN (SELECT child FROM auth_item_children WHERE parent = ?)", name).
		Scan(ctx), "GetChildren").Err()
	if err != nil {
		return nil, err
	}

	children := make(map[string]*Item, len(items))
	for i := range items {
		children[items[i].Name] = &items[i]
	}
	return children, nil
}

// GetChildrenList projects the whole edge set into a parent -> children
// adjacency map with a single query. Bulk traversals (descendant collection,
// cycle detection, tree building) run against this snapshot instead of
// issuing one query per hop.
func (s *Service) GetChildrenList(ctx context.Context) (map[string][]string, error) {
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[string][]string)
	for _, edge := range edges {
		children[edge.Parent] = append(children[edge.Parent], edge.Child)
	}
	return children, nil
}

// GetDescendants retrieves every item transitively reachable from name via
// child edges, resolved to full item records in one batched lookup.
func (s *Service) GetDescendants(ctx context.Context, name string) (map[string]*Item, error) {
	children, err := s.GetChildrenList(ctx)
	if err != nil {
		return nil, err
	}

	reachable := make(map[string]bool)
	collectDescendants(name, children, reachable)
	if len(reachable) == 0 {
		return map[string]*Item{}, nil
	}

	names := make([]string, 0, len(reachable))
	for n := range reachable {
		names = append(names, n)
	}
	return s.getItemsByNames(ctx, names, 0)
}

// detectCycle reports whether parent is reachable from child through the
// children adjacency map, i.e. whether inserting the edge parent -> child
// would close a loop. Depth-first over an explicit stack with a visited set.
func detectCycle(parent, child string, children map[string][]string) bool {
	if parent == child {
		return true
	}

	visited := make(map[string]bool)
	stack := []string{child}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if name == parent {
			return true
		}
		if visited[name] {
			continue
		}
		visited[name] = true
		stack = append(stack, children[name]...)
	}
	return false
}

// collectDescendants adds every item transitively reachable from name into
// result. Depth-first over an explicit stack; nodes already marked are not
// revisited, so shared subtrees are walked once.
func collectDescendants(name string, children map[string][]string, result map[string]bool) {
	stack := []string{name}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[current] {
			if result[child] {
				continue
			}
			result[child] = true
			stack = append(stack, child)
		}
	}
}
