package health

import (
	"context"
	"net/http"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// crmHealthChecker probes the remote CRM origin. Any HTTP response counts as
// reachable; only transport failures are unhealthy.
type crmHealthChecker struct {
	baseURL string
	client  *http.Client
}

func (c *crmHealthChecker) Name() string { return "crm_api" }

func (c *crmHealthChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// NewCRMHealthChecker creates a reachability probe for the remote CRM service.
func NewCRMHealthChecker(baseURL string, client *http.Client) ports.HealthChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &crmHealthChecker{baseURL: baseURL, client: client}
}
