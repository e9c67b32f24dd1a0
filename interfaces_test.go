package authkit

// Compile-time assertions that the concrete services satisfy the exported
// interface set.
var (
	_ ItemManager        = (*Service)(nil)
	_ HierarchyManager   = (*Service)(nil)
	_ AssignmentManager  = (*Service)(nil)
	_ AccessChecker      = (*Service)(nil)
	_ TransactionManager = (*Service)(nil)
	_ MigrationManager   = (*Service)(nil)
	_ AuditLogger        = (*Service)(nil)
	_ TransactionMonitor = (*Service)(nil)
	_ HealthMonitor      = (*HealthService)(nil)
	_ PoolManager        = (*PoolService)(nil)
)
