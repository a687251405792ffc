package query

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the query cache counters. A nil *Metrics records nothing.
type Metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fetches       *prometheus.CounterVec
	discarded     prometheus.Counter
	invalidations prometheus.Counter
	evictions     prometheus.Counter
}

// NewMetrics creates the query cache metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_query_cache_hits_total",
			Help: "Query registrations served from a fresh cache entry",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_query_cache_misses_total",
			Help: "Query registrations that issued or joined a fetch",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_query_fetches_total",
			Help: "Completed fetches by outcome",
		}, []string{"outcome"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_query_discarded_responses_total",
			Help: "Responses dropped because a newer generation was issued",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_query_invalidations_total",
			Help: "Cache entries marked stale",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_query_evictions_total",
			Help: "Cache entries evicted by the LRU bound",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.fetches, m.discarded, m.invalidations, m.evictions)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) fetched(outcome string) {
	if m != nil {
		m.fetches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) discard() {
	if m != nil {
		m.discarded.Inc()
	}
}

func (m *Metrics) invalidated(n int) {
	if m != nil && n > 0 {
		m.invalidations.Add(float64(n))
	}
}

func (m *Metrics) evicted() {
	if m != nil {
		m.evictions.Inc()
	}
}
