package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// RateLimiterService applies one fixed-window policy to every subject. Each
// vendor/client pair counts against its own window.
type RateLimiterService struct {
	repo      ports.RateLimitRepository
	limit     int
	burst     int
	window    time.Duration
	keyPrefix string
	logger    *logrus.Logger
}

type RateLimiterConfig struct {
	DefaultRequestsPerMinute int
	BurstMultiplier          float64
	Window                   time.Duration
	KeyPrefix                string
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	s := &RateLimiterService{repo: repo, limit: 600, window: time.Minute, keyPrefix: "ratelimit:client", logger: logger}
	multiplier := 2.0
	if cfg != nil {
		if cfg.DefaultRequestsPerMinute > 0 {
			s.limit = cfg.DefaultRequestsPerMinute
		}
		if cfg.BurstMultiplier > 0 {
			multiplier = cfg.BurstMultiplier
		}
		if cfg.Window > 0 {
			s.window = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			s.keyPrefix = cfg.KeyPrefix
		}
	}
	s.burst = int(float64(s.limit) * multiplier)
	return s
}

func (s *RateLimiterService) Allow(ctx context.Context, subject ports.RateLimitSubject) (bool, int, int, time.Time, error) {
	// counters outlive their window by one more so a late INCR still expires
	count, windowStart, err := s.repo.IncrementWindow(ctx, subject.Key(), s.window, s.keyPrefix, 2*s.window)
	reset := windowStart.Add(s.window)
	fields := logrus.Fields{"vendor_id": subject.VendorID, "client_ip": subject.ClientIP}
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(fields).WithError(err).Error("rate limiter: failed to increment window")
		}
		// fail open
		return true, s.burst, s.limit, reset, err
	}
	if s.logger != nil {
		s.logger.WithFields(fields).WithFields(logrus.Fields{"count": count, "burst": s.burst}).Debug("rate limiter window state")
	}
	if count > s.burst {
		return false, 0, s.limit, reset, nil
	}
	return true, s.burst - count, s.limit, reset, nil
}

var _ ports.RateLimiterService = (*RateLimiterService)(nil)
