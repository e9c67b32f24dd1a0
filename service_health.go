package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// HealthService exposes connectivity and pool diagnostics for the
// authorization store as an extension to Service. Deployments that gate
// readiness on the permission backend can mount these checks directly.
type HealthService struct {
	*Service
}

// NewHealthService creates a new health service extension
func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service}
}

// Health reports the full database health status: reachability, latency,
// and pool counters. A handle without pool introspection (a transaction or
// a test double) degrades to a plain reachability probe.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}

	hs.logger.Warn().Msg("health check degraded, database handle has no pool introspection")

	status := dbkit.HealthStatus{Healthy: true}
	if err := hs.Ping(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	}
	return status
}

// IsHealthy reports whether the authorization store is reachable.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}
	return hs.Ping(ctx) == nil
}

// GetPoolStats returns connection pool statistics for monitoring. A handle
// without a pool yields zero values.
func (hs *HealthService) GetPoolStats() dbkit.PoolStats {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return dbkit.PoolStatsFromSQL(db.Stats())
	}
	return dbkit.PoolStats{}
}

// Ping performs a basic connectivity test against the authorization store.
func (hs *HealthService) Ping(ctx context.Context) error {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.PingContext(ctx)
	}

	var one int
	return hs.db.NewRaw("SELECT 1").Scan(ctx, &one)
}
