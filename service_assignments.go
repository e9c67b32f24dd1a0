package authkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// ASSIGNMENT OPERATIONS
// ============================================================================

// Assign grants an item directly to a user. Assigning an already-assigned
// (user, item) pair is a no-op that returns the existing record with its
// original creation time. Use NormalizeUserID for non-string identifiers.
func (s *Service) Assign(ctx context.Context, itemName, userID string) (*Assignment, error) {
	if userID == "" {
		return nil, NewError(ErrInvalidArgument, "user ID must not be empty").WithItem(itemName)
	}

	item, err := s.GetItem(ctx, itemName)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, NewError(ErrNotFound, "item does not exist").WithItem(itemName)
	}

	unlock := s.locks.lock(itemName)
	defer unlock()

	existing, err := s.GetAssignment(ctx, itemName, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	assignment := &Assignment{
		UserID:    userID,
		ItemName:  itemName,
		CreatedAt: time.Now(),
	}

	result, err := s.idb(ctx).NewInsert().Model(assignment).
		On("CONFLICT (user_id, item_name) DO NOTHING").
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "Assign").Err(); err != nil {
		return nil, NewError(ErrDatabaseError, "failed to store assignment").
			WithItem(itemName).WithUser(userID)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Lost a race against a concurrent Assign; the stored record wins.
		return s.GetAssignment(ctx, itemName, userID)
	}

	s.audit(ctx, &AuditEntry{
		Action:       AuditActionAssigned,
		TargetUserID: userID,
		ItemName:     itemName,
	})
	return assignment, nil
}

// Revoke removes the (user, item) assignment if present and reports whether
// a record was deleted.
func (s *Service) Revoke(ctx context.Context, itemName, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	result, err := s.idb(ctx).NewDelete().Table("auth_assignments").
		Where("user_id = ? AND item_name = ?", userID, itemName).Exec(ctx)
	if err := dbkit.WithErr(result, err, "Revoke").Err(); err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.audit(ctx, &AuditEntry{
		Action:       AuditActionRevoked,
		TargetUserID: userID,
		ItemName:     itemName,
	})
	return true, nil
}

// RevokeAll removes every assignment of a user and reports whether any
// record was deleted.
func (s *Service) RevokeAll(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	result, err := s.idb(ctx).NewDelete().Table("auth_assignments").
		Where("user_id = ?", userID).Exec(ctx)
	if err := dbkit.WithErr(result, err, "RevokeAll").Err(); err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.audit(ctx, &AuditEntry{
		Action:       AuditActionRevokedAll,
		TargetUserID: userID,
	})
	return true, nil
}

// GetAssignment retrieves the assignment of an item to a user. Returns
// (nil, nil) when absent; an empty user ID means no assignments.
func (s *Service) GetAssignment(ctx context.Context, itemName, userID string) (*Assignment, error) {
	if userID == "" {
		return nil, nil
	}

	var assignment Assignment
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&assignment).
		Where("user_id = ? AND item_name = ?", userID, itemName).
		Limit(1).Scan(ctx), "GetAssignment").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// GetAssignments retrieves all assignments of a user, keyed by item name.
// An empty user ID yields an empty map.
func (s *Service) GetAssignments(ctx context.Context, userID string) (map[string]Assignment, error) {
	if userID == "" {
		return map[string]Assignment{}, nil
	}

	var assignments []Assignment
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&assignments).
		Where("user_id = ?", userID).Scan(ctx), "GetAssignments").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]Assignment, len(assignments))
	for _, a := range assignments {
		result[a.ItemName] = a
	}
	return result, nil
}

// GetAssignmentsForItem retrieves every user assignment of an item, keyed
// by user ID. An empty map means no user holds the item directly.
func (s *Service) GetAssignmentsForItem(ctx context.Context, itemName string) (map[string]Assignment, error) {
	var assignments []Assignment
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&assignments).
		Where("item_name = ?", itemName).Scan(ctx), "GetAssignmentsForItem").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]Assignment, len(assignments))
	for _, a := range assignments {
		result[a.UserID] = a
	}
	return result, nil
}

// CountAssignments returns the total number of assignment records.
// Useful for monitoring and analytics.
func (s *Service) CountAssignments(ctx context.Context) (int, error) {
	return dbkit.Count[Assignment](ctx, s.idb(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}
