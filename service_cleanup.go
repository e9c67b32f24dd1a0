package authkit

import (
	"context"
	"database/sql"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// BULK REMOVAL
// ============================================================================

// RemoveAll wipes every item, rule, hierarchy edge, and assignment.
// Intended for bootstrap and test teardown, not regular operation.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		for _, table := range []string{
			"auth_assignments",
			"auth_item_children",
			"auth_items",
			"auth_rules",
		} {
			result, err := s.idb(ctx).NewDelete().Table(table).Where("TRUE").Exec(ctx)
			if err := dbkit.WithErr(result, err, "RemoveAll").Err(); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAllPermissions removes every permission item with its edges and
// assignments.
func (s *Service) RemoveAllPermissions(ctx context.Context) error {
	return s.removeAllItems(ctx, TypePermission)
}

// RemoveAllRoles removes every role item with its edges and assignments.
func (s *Service) RemoveAllRoles(ctx context.Context) error {
	return s.removeAllItems(ctx, TypeRole)
}

// removeAllItems removes all items of one type. Permissions only ever occur
// on the child side of an edge, so the edge cleanup keys on the side the
// removed type can appear on; role removal clears both sides.
func (s *Service) removeAllItems(ctx context.Context, itemType ItemType) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		var names []string
		err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model((*Item)(nil)).
			Column("name").Where("type = ?", itemType).
			Scan(ctx, &names), "RemoveAllItemsNames").Err()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}

		var result sql.Result
		if itemType == TypePermission {
			result, err = s.idb(ctx).NewDelete().Table("auth_item_children").
				Where("child IN (?)", bun.In(names)).Exec(ctx)
		} else {
			result, err = s.idb(ctx).NewDelete().Table("auth_item_children").
				Where("parent IN (?) OR child IN (?)", bun.In(names), bun.In(names)).Exec(ctx)
		}
		if err := dbkit.WithErr(result, err, "RemoveAllItemsEdges").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_assignments").
			Where("item_name IN (?)", bun.In(names)).Exec(ctx)
		if err := dbkit.WithErr(result, err, "RemoveAllItemsAssignments").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_items").
			Where("type = ?", itemType).Exec(ctx)
		return dbkit.WithErr(result, err, "RemoveAllItems").Err()
	})
}

// RemoveAllRules deletes every rule and clears the rule reference on every
// item, leaving the items themselves in place.
func (s *Service) RemoveAllRules(ctx context.Context) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.idb(ctx).NewUpdate().Table("auth_items").
			Set("rule_name = NULL").
			Where("rule_name IS NOT NULL").Exec(ctx)
		if err := dbkit.WithErr(result, err, "ClearAllRuleReferences").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_rules").Where("TRUE").Exec(ctx)
		return dbkit.WithErr(result, err, "RemoveAllRules").Err()
	})
}

// RemoveAllAssignments deletes every assignment record.
func (s *Service) RemoveAllAssignments(ctx context.Context) error {
	result, err := s.idb(ctx).NewDelete().Table("auth_assignments").Where("TRUE").Exec(ctx)
	return dbkit.WithErr(result, err, "RemoveAllAssignments").Err()
}
