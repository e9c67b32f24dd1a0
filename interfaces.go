package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// ItemManager defines the item and rule management interface
type ItemManager interface {
	GetItem(ctx context.Context, name string) (*Item, error)
	GetItems(ctx context.Context, itemType ItemType) (map[string]*Item, error)
	ItemExists(ctx context.Context, name string) bool
	AddItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, oldName string, item *Item) error
	RemoveItem(ctx context.Context, name string) error
	GetRule(ctx context.Context, name string) (*Rule, error)
	GetRules(ctx context.Context) (map[string]*Rule, error)
	AddRule(ctx context.Context, rule *Rule) error
	UpdateRule(ctx context.Context, oldName string, rule *Rule) error
	RemoveRule(ctx context.Context, name string) error
}

// HierarchyManager defines the item hierarchy management interface
type HierarchyManager interface {
	AddChild(ctx context.Context, parent, child string) error
	RemoveChild(ctx context.Context, parent, child string) (bool, error)
	RemoveChildren(ctx context.Context, parent string) error
	RemoveChildrenByType(ctx context.Context, parent string, itemType ItemType) error
	HasChild(ctx context.Context, parent, child string) bool
	GetChildren(ctx context.Context, name string) (map[string]*Item, error)
	GetChildrenList(ctx context.Context) (map[string][]string, error)
	GetDescendants(ctx context.Context, name string) (map[string]*Item, error)
	BuildTree(ctx context.Context) ([]TreeNode, error)
	BuildSubtree(ctx context.Context, root string) (*TreeNode, error)
}

// AssignmentManager defines the user assignment management interface
type AssignmentManager interface {
	Assign(ctx context.Context, itemName, userID string) (*Assignment, error)
	Revoke(ctx context.Context, itemName, userID string) (bool, error)
	RevokeAll(ctx context.Context, userID string) (bool, error)
	GetAssignment(ctx context.Context, itemName, userID string) (*Assignment, error)
	GetAssignments(ctx context.Context, userID string) (map[string]Assignment, error)
}

// AccessChecker defines the permission checking interface
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, permissionName string, params map[string]any) (bool, error)
	GetRolesByUser(ctx context.Context, userID string) (map[string]*Item, error)
	GetPermissionsByRole(ctx context.Context, roleName string) (map[string]*Item, error)
	GetPermissionsByUser(ctx context.Context, userID string) (map[string]*Item, error)
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// PoolManager defines the connection pool management interface
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	OptimizeConnectionPool() error
	ResetConnectionPool() error
}

// AuditLogger defines the audit logging interface
type AuditLogger interface {
	GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuthAuditLog, error)
}

// TransactionMonitor defines the transaction monitoring interface
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
