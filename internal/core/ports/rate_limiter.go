package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides low-level atomic operations for rate limiting counters.
// It abstracts storage (e.g., Redis). Implementation should be concurrency-safe.
type RateLimitRepository interface {
	// IncrementWindow atomically increments the request counter for subject in the current window
	// and ensures the key expires after ttl. Returns the updated count and the window start time.
	IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (count int, windowStart time.Time, err error)
}

// RateLimitSubject identifies the requests that share one window: a single
// dashboard client of a vendor.
type RateLimitSubject struct {
	VendorID string
	ClientIP string
}

// Key names the subject's counter. Without a client address the vendor's
// requests share one window.
func (s RateLimitSubject) Key() string {
	if s.ClientIP == "" {
		return s.VendorID
	}
	return s.VendorID + ":" + s.ClientIP
}

// RateLimiterService limits requests per RateLimitSubject.
// Implementations MUST be safe for concurrent use.
type RateLimiterService interface {
	// Allow consumes one request unit for subject and reports whether it is permitted.
	// remaining: number of additional requests allowed in current window after this one (>=0)
	// limit: configured max requests per window
	// reset: time when the current window resets (Unix semantics for headers)
	Allow(ctx context.Context, subject RateLimitSubject) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
