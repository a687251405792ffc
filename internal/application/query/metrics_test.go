package query

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountCacheActivity(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	c := New(Options{Metrics: m})
	key := NewKey("customers", "V1")
	ok := func(ctx context.Context) (any, error) { return "x", nil }

	c.Query(context.Background(), key, ok)
	c.Query(context.Background(), key, ok)
	c.Invalidate(key)
	c.Query(context.Background(), key, func(ctx context.Context) (any, error) { return nil, errors.New("boom") })

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.hit()
	m.miss()
	m.fetched("success")
	m.discard()
	m.invalidated(3)
	m.evicted()
}
