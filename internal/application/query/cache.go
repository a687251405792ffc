package query

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/caller-crm/internal/core/ports"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchFunc loads the data for one key. Callers should pass the same function
// for the same key; the cache deduplicates by key, not by function.
type FetchFunc func(ctx context.Context) (any, error)

// State is a snapshot of a cache entry as seen by one registration.
type State struct {
	Key        Key       `json:"key"`
	Data       any       `json:"data,omitempty"`
	Status     Status    `json:"status"`
	Err        error     `json:"-"`
	FetchedAt  time.Time `json:"fetchedAt"`
	Stale      bool      `json:"stale"`
	Generation uint64    `json:"generation"`
}

// HasData reports whether a successful result was ever stored for the key.
func (s State) HasData() bool { return s.Data != nil }

// ErrorMessage returns the error text or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Options configures a Cache.
type Options struct {
	// StaleTime is the default age after which a successful entry is refetched.
	// Zero keeps entries fresh until they are invalidated.
	StaleTime time.Duration
	// FetchTimeout bounds every fetch; zero means no timeout.
	FetchTimeout time.Duration
	// MaxEntries bounds the number of entries with LRU eviction; zero means unbounded.
	MaxEntries int
	// Persister stores JSON snapshots of successful results. Optional.
	Persister   ports.Cache
	SnapshotTTL time.Duration
	Logger      *logrus.Logger
	Metrics     *Metrics
	Now         func() time.Time
}

type entry struct {
	key   Key
	hash  string
	state State
	stale bool
	// gen is the generation whose outcome may still be applied.
	gen        uint64
	inflight   bool
	prevStatus Status
	elem       *list.Element
}

func (e *entry) snapshot() State {
	st := e.state
	st.Key = e.key
	st.Stale = e.stale
	st.Generation = e.gen
	return st
}

// Cache memoizes remote reads by Key, coalesces concurrent fetches of the
// same key and applies only the newest generation's response. It is created
// once at startup and shared by every screen; Close stops its pollers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	lru     *list.List
	nextGen uint64
	sf      singleflight.Group

	opts    Options
	logger  *logrus.Logger
	metrics *Metrics

	pollers   sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

func New(opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		entries: make(map[string]*entry),
		lru:     list.New(),
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		closed:  make(chan struct{}),
	}
}

type queryOptions struct {
	staleTime time.Duration
	force     bool
}

// QueryOption tunes a single registration.
type QueryOption func(*queryOptions)

// WithStaleTime overrides the cache-wide StaleTime for one registration.
func WithStaleTime(d time.Duration) QueryOption {
	return func(o *queryOptions) { o.staleTime = d }
}

func withForce() QueryOption {
	return func(o *queryOptions) { o.force = true }
}

// Query registers interest in key. A fresh entry is returned without a
// fetch; otherwise the in-flight fetch for the key is joined, or a new one is
// issued, and Query blocks until it resolves or ctx is done. Failures are
// reported in State.Err, never returned or panicked.
func (c *Cache) Query(ctx context.Context, key Key, fetch FetchFunc, opts ...QueryOption) State {
	qo := queryOptions{staleTime: c.opts.StaleTime}
	for _, o := range opts {
		o(&qo)
	}

	c.mu.Lock()
	e := c.lookup(key, true)
	if !qo.force && c.fresh(e, qo.staleTime) {
		st := e.snapshot()
		c.mu.Unlock()
		c.metrics.hit()
		return st
	}
	c.metrics.miss()
	ch := c.startOrJoin(ctx, e, fetch, qo.force)
	c.mu.Unlock()

	select {
	case res := <-ch:
		if st, ok := res.Val.(State); ok {
			return st
		}
		c.mu.Lock()
		st := e.snapshot()
		c.mu.Unlock()
		st.Err = res.Err
		return st
	case <-ctx.Done():
		c.mu.Lock()
		st := e.snapshot()
		c.mu.Unlock()
		st.Err = ctx.Err()
		return st
	}
}

// Refetch issues a new generation for key even when the entry is fresh or a
// fetch is already in flight; the older request's response will be discarded.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch FetchFunc) State {
	return c.Query(ctx, key, fetch, withForce())
}

// Peek returns the current state of key without registering interest.
func (c *Cache) Peek(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.Hash()]
	if !ok {
		return State{Key: key, Status: StatusIdle}, false
	}
	return e.snapshot(), true
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate marks the given keys stale. Keys without an entry are ignored.
func (c *Cache) Invalidate(keys ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range keys {
		if e, ok := c.entries[k.Hash()]; ok {
			c.markStale(e)
			n++
		}
	}
	c.metrics.invalidated(n)
	return n
}

// InvalidatePrefix marks every entry whose key starts with prefix stale.
func (c *Cache) InvalidatePrefix(prefix Key) int {
	return c.InvalidateMatching(MatchPrefix(prefix))
}

// InvalidateMatching marks every entry whose key satisfies pred stale and
// returns how many were marked. It never triggers a fetch by itself.
func (c *Cache) InvalidateMatching(pred func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if pred(e.key) {
			c.markStale(e)
			n++
		}
	}
	c.metrics.invalidated(n)
	if n > 0 && c.logger != nil {
		c.logger.WithField("entries", n).Debug("query cache: invalidated")
	}
	return n
}

// Close stops all pollers and waits for them to exit.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closeOnce.Do(func() { close(c.closed) })
	c.mu.Unlock()
	c.pollers.Wait()
}

// markStale must be called with c.mu held. A fetch that started before the
// invalidation is detached: its response will not be applied.
func (c *Cache) markStale(e *entry) {
	e.stale = true
	if e.inflight {
		e.inflight = false
		c.nextGen++
		e.gen = c.nextGen
		e.state.Status = e.prevStatus
	}
}

func (c *Cache) fresh(e *entry, staleTime time.Duration) bool {
	if e.state.Status != StatusSuccess || e.stale {
		return false
	}
	if staleTime > 0 && c.opts.Now().Sub(e.state.FetchedAt) >= staleTime {
		return false
	}
	return true
}

// lookup must be called with c.mu held.
func (c *Cache) lookup(key Key, create bool) *entry {
	hash := key.Hash()
	if e, ok := c.entries[hash]; ok {
		c.lru.MoveToFront(e.elem)
		return e
	}
	if !create {
		return nil
	}
	e := &entry{
		key:   append(Key(nil), key...),
		hash:  hash,
		state: State{Status: StatusIdle},
	}
	e.elem = c.lru.PushFront(e)
	c.entries[hash] = e
	c.evict()
	return e
}

// evict drops least-recently-used entries that have no fetch in flight.
func (c *Cache) evict() {
	if c.opts.MaxEntries <= 0 {
		return
	}
	for el := c.lru.Back(); el != nil && len(c.entries) > c.opts.MaxEntries; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if !e.inflight && el != c.lru.Front() {
			c.lru.Remove(el)
			delete(c.entries, e.hash)
			c.metrics.evicted()
		}
		el = prev
	}
}

// startOrJoin must be called with c.mu held. The singleflight call is
// registered under the lock so a registration can never miss a running
// fetch and start a duplicate for the same generation.
func (c *Cache) startOrJoin(ctx context.Context, e *entry, fetch FetchFunc, force bool) <-chan singleflight.Result {
	if !e.inflight || force {
		c.nextGen++
		e.gen = c.nextGen
		if !e.inflight {
			e.prevStatus = e.state.Status
		}
		e.inflight = true
		e.state.Status = StatusLoading
		e.state.Err = nil
	}
	gen := e.gen
	fetchCtx := context.WithoutCancel(ctx)
	return c.sf.DoChan(e.hash+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		return c.run(fetchCtx, e, gen, fetch), nil
	})
}

func (c *Cache) run(ctx context.Context, e *entry, gen uint64, fetch FetchFunc) State {
	if c.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.FetchTimeout)
		defer cancel()
	}
	data, err := safeFetch(ctx, fetch)

	c.mu.Lock()
	if gen != e.gen {
		st := State{Key: e.key, Status: StatusSuccess, Data: data, Err: err, Stale: true, Generation: gen}
		if err != nil {
			st.Status = StatusError
		}
		c.mu.Unlock()
		c.metrics.discard()
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"key": e.hash, "generation": gen}).Debug("query cache: discarded superseded response")
		}
		return st
	}
	e.inflight = false
	if err != nil {
		e.state.Status = StatusError
		e.state.Err = err
	} else {
		e.state.Status = StatusSuccess
		e.state.Data = data
		e.state.Err = nil
		e.state.FetchedAt = c.opts.Now()
		e.stale = false
	}
	st := e.snapshot()
	hash := e.hash
	c.mu.Unlock()

	if err != nil {
		c.metrics.fetched("error")
		if c.logger != nil {
			c.logger.WithError(err).WithField("key", hash).Warn("query cache: fetch failed")
		}
		return st
	}
	c.metrics.fetched("success")
	c.persist(ctx, hash, data)
	return st
}

func safeFetch(ctx context.Context, fetch FetchFunc) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("query: fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func snapshotKey(hash string) string { return "query:" + hash }

func (c *Cache) persist(ctx context.Context, hash string, data any) {
	if c.opts.Persister == nil {
		return
	}
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.opts.Persister.Set(ctx, snapshotKey(hash), b, c.opts.SnapshotTTL); err != nil && c.logger != nil {
		c.logger.WithError(err).WithField("key", hash).Debug("query cache: snapshot write failed")
	}
}

// hydrate seeds a missing entry from its persisted snapshot. The seeded entry
// is stale, so the next registration still fetches; if that fetch fails the
// snapshot remains visible as the last known data.
func (c *Cache) hydrate(ctx context.Context, key Key, decode func([]byte) (any, bool)) {
	if c.opts.Persister == nil {
		return
	}
	hash := key.Hash()
	c.mu.Lock()
	_, exists := c.entries[hash]
	c.mu.Unlock()
	if exists {
		return
	}
	b, ok, err := c.opts.Persister.Get(ctx, snapshotKey(hash))
	if err != nil || !ok {
		return
	}
	data, ok := decode(b)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[hash]; exists {
		return
	}
	e := c.lookup(key, true)
	e.state.Data = data
	e.state.Status = StatusSuccess
	e.stale = true
}

// Get is the typed form of Query. The zero T is returned when the entry
// holds no data of type T.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error), opts ...QueryOption) (T, State) {
	c.hydrate(ctx, key, func(b []byte) (any, bool) {
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, false
		}
		return v, true
	})
	st := c.Query(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}, opts...)
	v, _ := st.Data.(T)
	return v, st
}
