package ports

import "context"

// HealthChecker probes one backing dependency (database, redis) for GET /health.
type HealthChecker interface {
	Name() string
	// Check returns nil when the dependency answers within ctx's deadline.
	Check(ctx context.Context) error
}
