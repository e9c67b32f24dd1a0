package authkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an
// extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for AuthKit.
// Run them with db.Migrate(ctx, service.Migrations()) on the dbkit
// instance before using the service.
func (s *Service) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "authkit-001",
			Description: "Create auth_items table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_items (
                    name TEXT PRIMARY KEY,
                    type SMALLINT NOT NULL,
                    description TEXT NOT NULL DEFAULT '',
                    rule_name TEXT,
                    data BYTEA,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS idx_auth_items_type ON auth_items (type);
                CREATE INDEX IF NOT EXISTS idx_auth_items_rule_name ON auth_items (rule_name)`,
		},
		{
			ID:          "authkit-002",
			Description: "Create auth_rules table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_rules (
                    name TEXT PRIMARY KEY,
                    data BYTEA,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-003",
			Description: "Create auth_item_children table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_item_children (
                    parent TEXT NOT NULL,
                    child TEXT NOT NULL,
                    PRIMARY KEY (parent, child)
                );
                CREATE INDEX IF NOT EXISTS idx_auth_item_children_child ON auth_item_children (child)`,
		},
		{
			ID:          "authkit-004",
			Description: "Create auth_assignments table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_assignments (
                    user_id TEXT NOT NULL,
                    item_name TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    PRIMARY KEY (user_id, item_name)
                );
                CREATE INDEX IF NOT EXISTS idx_auth_assignments_item ON auth_assignments (item_name)`,
		},
		{
			ID:          "authkit-005",
			Description: "Create auth_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT,
                    action TEXT NOT NULL,
                    target_user_id TEXT,
                    item_name TEXT,
                    rule_name TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                );
                CREATE INDEX IF NOT EXISTS idx_auth_audit_log_timestamp ON auth_audit_log (timestamp)`,
		},
	}
}
