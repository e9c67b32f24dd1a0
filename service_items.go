package authkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ITEM OPERATIONS
// ============================================================================

// GetItem retrieves an item by name. Returns (nil, nil) when the item does
// not exist; access checks rely on absence being a plain value, not an error.
func (s *Service) GetItem(ctx context.Context, name string) (*Item, error) {
	var item Item
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&item).Where("name = ?", name).Limit(1).Scan(ctx), "GetItem").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItems retrieves all items of the given type, keyed by name.
func (s *Service) GetItems(ctx context.Context, itemType ItemType) (map[string]*Item, error) {
	var items []Item
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&items).Where("type = ?", itemType).Scan(ctx), "GetItems").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Item, len(items))
	for i := range items {
		result[items[i].Name] = &items[i]
	}
	return result, nil
}

// GetRoles retrieves all role items, keyed by name.
func (s *Service) GetRoles(ctx context.Context) (map[string]*Item, error) {
	return s.GetItems(ctx, TypeRole)
}

// GetPermissions retrieves all permission items, keyed by name.
func (s *Service) GetPermissions(ctx context.Context) (map[string]*Item, error) {
	return s.GetItems(ctx, TypePermission)
}

// ItemExists reports whether an item with the given name exists.
func (s *Service) ItemExists(ctx context.Context, name string) bool {
	exists, err := dbkit.Exists[Item](ctx, s.idb(ctx), whereName(name))
	if err != nil {
		return false
	}
	return exists
}

// AddItem stores a new item. The name must be unique across roles and
// permissions. Creation and update timestamps are filled in when the caller
// left them zero.
func (s *Service) AddItem(ctx context.Context, item *Item) error {
	if item == nil || item.Name == "" {
		return NewError(ErrInvalidArgument, "item name must not be empty")
	}
	if !item.Type.Valid() {
		return NewError(ErrInvalidArgument, "item type must be role or permission").WithItem(item.Name)
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	unlock := s.locks.lock(item.Name)
	defer unlock()

	result, err := s.idb(ctx).NewInsert().Model(item).Exec(ctx)
	err = dbkit.WithErr(result, err, "AddItem").Err()
	if err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrAlreadyExists, "an item with this name already exists").WithItem(item.Name)
		}
		return NewError(ErrDatabaseError, "failed to store item").WithItem(item.Name)
	}

	s.audit(ctx, &AuditEntry{Action: AuditActionItemAdded, ItemName: item.Name})
	return nil
}

// UpdateItem updates the item previously stored under oldName. When the name
// changes, every hierarchy edge and assignment referencing oldName is renamed
// inside the same transaction, so graph and assignment records never orphan.
// The item type is immutable and is not written.
func (s *Service) UpdateItem(ctx context.Context, oldName string, item *Item) error {
	if item == nil || item.Name == "" {
		return NewError(ErrInvalidArgument, "item name must not be empty")
	}

	unlock := s.locks.lock(oldName, item.Name)
	defer unlock()

	err := s.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.GetItem(ctx, oldName)
		if err != nil {
			return err
		}
		if existing == nil {
			return NewError(ErrNotFound, "item does not exist").WithItem(oldName)
		}

		if item.Name != oldName {
			result, err := s.idb(ctx).NewUpdate().Table("auth_item_children").
				Set("parent = ?", item.Name).
				Where("parent = ?", oldName).Exec(ctx)
			if err := dbkit.WithErr(result, err, "RenameEdgeParents").Err(); err != nil {
				return err
			}

			result, err = s.idb(ctx).NewUpdate().Table("auth_item_children").
				Set("child = ?", item.Name).
				Where("child = ?", oldName).Exec(ctx)
			if err := dbkit.WithErr(result, err, "RenameEdgeChildren").Err(); err != nil {
				return err
			}

			result, err = s.idb(ctx).NewUpdate().Table("auth_assignments").
				Set("item_name = ?", item.Name).
				Where("item_name = ?", oldName).Exec(ctx)
			if err := dbkit.WithErr(result, err, "RenameAssignments").Err(); err != nil {
				return err
			}
		}

		item.UpdatedAt = time.Now()

		result, err := s.idb(ctx).NewUpdate().Table("auth_items").
			Set("name = ?", item.Name).
			Set("description = ?", item.Description).
			Set("rule_name = ?", item.RuleName).
			Set("data = ?", item.Data).
			Set("updated_at = ?", item.UpdatedAt).
			Where("name = ?", oldName).Exec(ctx)
		if err := dbkit.WithErr(result, err, "UpdateItem").Err(); err != nil {
			if dbkit.IsDuplicate(err) {
				return NewError(ErrAlreadyExists, "an item with the new name already exists").WithItem(item.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{
		Action:   AuditActionItemUpdated,
		ItemName: item.Name,
		Metadata: map[string]any{"previous_name": oldName},
	})
	return nil
}

// RemoveItem deletes an item and cascades: every hierarchy edge where the
// item is parent or child and every assignment referencing it are removed
// in the same transaction. Dependents go first so a re-run after a partial
// failure converges to the same state.
func (s *Service) RemoveItem(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	err := s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.idb(ctx).NewDelete().Table("auth_item_children").
			Where("parent = ? OR child = ?", name, name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "RemoveItemEdges").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_assignments").
			Where("item_name = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "RemoveItemAssignments").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_items").
			Where("name = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "RemoveItem").Err(); err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return NewError(ErrNotFound, "item does not exist").WithItem(name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{Action: AuditActionItemRemoved, ItemName: name})
	return nil
}

// ============================================================================
// RULE OPERATIONS
// ============================================================================

// GetRule retrieves a rule by name. Returns (nil, nil) when absent.
func (s *Service) GetRule(ctx context.Context, name string) (*Rule, error) {
	var rule Rule
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&rule).Where("name = ?", name).Limit(1).Scan(ctx), "GetRule").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// GetRules retrieves all rules, keyed by name.
func (s *Service) GetRules(ctx context.Context) (map[string]*Rule, error) {
	var rules []Rule
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&rules).Scan(ctx), "GetRules").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Rule, len(rules))
	for i := range rules {
		result[rules[i].Name] = &rules[i]
	}
	return result, nil
}

// AddRule stores a new rule.
func (s *Service) AddRule(ctx context.Context, rule *Rule) error {
	if rule == nil || rule.Name == "" {
		return NewError(ErrInvalidArgument, "rule name must not be empty")
	}

	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	result, err := s.idb(ctx).NewInsert().Model(rule).Exec(ctx)
	err = dbkit.WithErr(result, err, "AddRule").Err()
	if err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrAlreadyExists, "a rule with this name already exists").WithRule(rule.Name)
		}
		return NewError(ErrDatabaseError, "failed to store rule").WithRule(rule.Name)
	}

	s.audit(ctx, &AuditEntry{Action: AuditActionRuleAdded, RuleName: rule.Name})
	return nil
}

// UpdateRule updates the rule previously stored under oldName. When the name
// changes, the rule_name reference on every item pointing at oldName is
// renamed in the same transaction.
func (s *Service) UpdateRule(ctx context.Context, oldName string, rule *Rule) error {
	if rule == nil || rule.Name == "" {
		return NewError(ErrInvalidArgument, "rule name must not be empty")
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if rule.Name != oldName {
			result, err := s.idb(ctx).NewUpdate().Table("auth_items").
				Set("rule_name = ?", rule.Name).
				Where("rule_name = ?", oldName).Exec(ctx)
			if err := dbkit.WithErr(result, err, "RenameRuleReferences").Err(); err != nil {
				return err
			}
		}

		rule.UpdatedAt = time.Now()

		result, err := s.idb(ctx).NewUpdate().Table("auth_rules").
			Set("name = ?", rule.Name).
			Set("data = ?", rule.Data).
			Set("updated_at = ?", rule.UpdatedAt).
			Where("name = ?", oldName).Exec(ctx)
		if err := dbkit.WithErr(result, err, "UpdateRule").Err(); err != nil {
			if dbkit.IsDuplicate(err) {
				return NewError(ErrAlreadyExists, "a rule with the new name already exists").WithRule(rule.Name)
			}
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return NewError(ErrNotFound, "rule does not exist").WithRule(oldName)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{
		Action:   AuditActionRuleUpdated,
		RuleName: rule.Name,
		Metadata: map[string]any{"previous_name": oldName},
	})
	return nil
}

// RemoveRule deletes a rule and clears the rule reference on every item
// pointing at it. Items survive with no rule, which makes them pass rule
// evaluation unconditionally afterwards.
func (s *Service) RemoveRule(ctx context.Context, name string) error {
	err := s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.idb(ctx).NewUpdate().Table("auth_items").
			Set("rule_name = NULL").
			Where("rule_name = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "ClearRuleReferences").Err(); err != nil {
			return err
		}

		result, err = s.idb(ctx).NewDelete().Table("auth_rules").
			Where("name = ?", name).Exec(ctx)
		if err := dbkit.WithErr(result, err, "RemoveRule").Err(); err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return NewError(ErrNotFound, "rule does not exist").WithRule(name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, &AuditEntry{Action: AuditActionRuleRemoved, RuleName: name})
	return nil
}
