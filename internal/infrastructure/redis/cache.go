package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// SnapshotStore persists query-cache snapshots in Redis so a restarted
// dashboard can show last-known data while it refetches.
type SnapshotStore struct {
	r redis.Cmdable
	// namespace keeps several dashboards (vendors) apart in one database
	prefix string
}

// NewSnapshotStore creates a store whose keys are "<prefix>:<key>".
func NewSnapshotStore(r redis.Cmdable, prefix string) *SnapshotStore {
	return &SnapshotStore{r: r, prefix: prefix}
}

func (s *SnapshotStore) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.r.Get(ctx, s.namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value; a non-positive ttl keeps it until deleted.
func (s *SnapshotStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.r.Set(ctx, s.namespaced(key), value, ttl).Err()
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	return s.r.Del(ctx, s.namespaced(key)).Err()
}

var _ ports.Cache = (*SnapshotStore)(nil)
