package authkit

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ItemType distinguishes the two kinds of authorization items.
// It is a closed set: every item is either a role or a permission.
type ItemType int

const (
	// TypeRole marks an item that groups other items and is assigned to users.
	TypeRole ItemType = 1

	// TypePermission marks a leaf-oriented item representing a capability.
	TypePermission ItemType = 2
)

// String returns a human-readable name for the item type.
func (t ItemType) String() string {
	switch t {
	case TypeRole:
		return "role"
	case TypePermission:
		return "permission"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Valid reports whether the type is one of the two known kinds.
func (t ItemType) Valid() bool {
	return t == TypeRole || t == TypePermission
}

// Item is a named authorization unit, either a role or a permission.
// Names are unique across both types: the hierarchy and assignment tables
// key purely by name, so roles and permissions share one namespace.
type Item struct {
	bun.BaseModel `bun:"table:auth_items,alias:ai"`

	Name        string   `bun:"name,pk"`
	Type        ItemType `bun:"type,notnull"`
	Description string   `bun:"description"`

	// RuleName optionally references a Rule by name. An item with no rule
	// always passes rule evaluation.
	RuleName string `bun:"rule_name"`

	// Data is an opaque application payload carried along with the item.
	Data []byte `bun:"data"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// NewRole creates a role item with the given name.
func NewRole(name string) *Item {
	return &Item{Name: name, Type: TypeRole}
}

// NewPermission creates a permission item with the given name.
func NewPermission(name string) *Item {
	return &Item{Name: name, Type: TypePermission}
}

// IsRole reports whether the item is a role.
func (i *Item) IsRole() bool { return i.Type == TypeRole }

// IsPermission reports whether the item is a permission.
func (i *Item) IsPermission() bool { return i.Type == TypePermission }

// Rule holds an opaque serialized predicate referenced by items via RuleName.
// The payload format is owned by the RuleEvaluator implementation; the store
// never interprets it.
type Rule struct {
	bun.BaseModel `bun:"table:auth_rules,alias:ar"`

	Name      string    `bun:"name,pk"`
	Data      []byte    `bun:"data"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ItemChild is a directed parent-child edge in the item hierarchy.
// The edge set forms a DAG; duplicate edges are never stored.
type ItemChild struct {
	bun.BaseModel `bun:"table:auth_item_children,alias:aic"`

	Parent string `bun:"parent,pk"`
	Child  string `bun:"child,pk"`
}

// Assignment is a direct grant of an item to a user. The (UserID, ItemName)
// pair is the identity; assigning twice yields one record.
type Assignment struct {
	bun.BaseModel `bun:"table:auth_assignments,alias:aa"`

	UserID    string    `bun:"user_id,pk"`
	ItemName  string    `bun:"item_name,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// NormalizeUserID converts a caller-supplied user identifier to its string
// form. Storage and lookup always use the string form, so numeric IDs and
// their string renderings address the same assignments. Nil yields "".
func NormalizeUserID(id any) string {
	if id == nil {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

// AuthAuditLog records authorization mutations for compliance and debugging.
type AuthAuditLog struct {
	bun.BaseModel `bun:"table:auth_audit_log,alias:aal"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID string `bun:"actor_id"`

	// What action was performed
	Action string `bun:"action,notnull"`

	// Target of the action
	TargetUserID string `bun:"target_user_id"`
	ItemName     string `bun:"item_name"`
	RuleName     string `bun:"rule_name"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	// Additional context (JSON)
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionAssigned     AuditAction = "assigned"
	AuditActionRevoked      AuditAction = "revoked"
	AuditActionRevokedAll   AuditAction = "revoked_all"
	AuditActionItemAdded    AuditAction = "item_added"
	AuditActionItemUpdated  AuditAction = "item_updated"
	AuditActionItemRemoved  AuditAction = "item_removed"
	AuditActionRuleAdded    AuditAction = "rule_added"
	AuditActionRuleUpdated  AuditAction = "rule_updated"
	AuditActionRuleRemoved  AuditAction = "rule_removed"
	AuditActionChildAdded   AuditAction = "child_added"
	AuditActionChildRemoved AuditAction = "child_removed"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID      string
	Action       AuditAction
	TargetUserID string
	ItemName     string
	RuleName     string
	IPAddress    string
	UserAgent    string
	RequestID    string
	Metadata     map[string]any
}

// ToModel converts an AuditEntry to an AuthAuditLog model.
func (e *AuditEntry) ToModel() *AuthAuditLog {
	return &AuthAuditLog{
		ActorID:      e.ActorID,
		Action:       string(e.Action),
		TargetUserID: e.TargetUserID,
		ItemName:     e.ItemName,
		RuleName:     e.RuleName,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		RequestID:    e.RequestID,
		Metadata:     e.Metadata,
		Timestamp:    time.Now(),
	}
}
