package ports

import "context"

// HealthChecker probes one dependency of the dashboard (Redis, the remote CRM).
// Check returns an error when the dependency is unreachable.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
