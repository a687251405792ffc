package query

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// FallbackErrorMessage is shown when a failed mutation carries no remote message.
const FallbackErrorMessage = "Something went wrong. Please try again."

// userMessager is implemented by errors that carry a message fit for display.
type userMessager interface {
	UserMessage() string
}

// MessageFor extracts the display message of err.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackErrorMessage
}

type MutateOptions struct {
	// OnSuccessInvalidate lists key prefixes marked stale after a successful request.
	OnSuccessInvalidate []Key
}

// MutationResult is the resolved outcome of a mutation. Failures are values,
// not returned errors, so a form can render Message inline.
type MutationResult[T any] struct {
	Data        T
	Err         error
	Message     string
	Invalidated int
}

func (r MutationResult[T]) OK() bool { return r.Err == nil }

// Mutate performs one create/update/delete request. On success every key in
// OnSuccessInvalidate is invalidated before Mutate returns; on failure the
// cache is left untouched. There is no retry.
func Mutate[T any](ctx context.Context, c *Cache, request func(context.Context) (T, error), opts MutateOptions) MutationResult[T] {
	data, err := request(ctx)
	if err != nil {
		return MutationResult[T]{Err: err, Message: MessageFor(err)}
	}
	n := 0
	if c != nil {
		for _, k := range opts.OnSuccessInvalidate {
			n += c.InvalidatePrefix(k)
		}
	}
	return MutationResult[T]{Data: data, Invalidated: n}
}

type MutationStatus string

const (
	MutationIdle    MutationStatus = "idle"
	MutationPending MutationStatus = "pending"
	MutationError   MutationStatus = "error"
)

// Mutation binds a request function to the keys it invalidates and tracks
// the status of its latest submission. It does not prevent concurrent
// submissions.
type Mutation[V, T any] struct {
	cache      *Cache
	request    func(context.Context, V) (T, error)
	invalidate func(V) []Key
	logger     *logrus.Logger
	name       string

	mu      sync.Mutex
	status  MutationStatus
	lastErr error
	pending int
}

func NewMutation[V, T any](name string, c *Cache, request func(context.Context, V) (T, error), invalidate func(V) []Key, logger *logrus.Logger) *Mutation[V, T] {
	return &Mutation[V, T]{
		cache:      c,
		request:    request,
		invalidate: invalidate,
		logger:     logger,
		name:       name,
		status:     MutationIdle,
	}
}

func (m *Mutation[V, T]) Mutate(ctx context.Context, vars V) MutationResult[T] {
	m.mu.Lock()
	m.pending++
	m.status = MutationPending
	m.mu.Unlock()

	var keys []Key
	if m.invalidate != nil {
		keys = m.invalidate(vars)
	}
	res := Mutate(ctx, m.cache, func(ctx context.Context) (T, error) {
		return m.request(ctx, vars)
	}, MutateOptions{OnSuccessInvalidate: keys})

	m.mu.Lock()
	m.pending--
	switch {
	case res.Err != nil:
		m.status = MutationError
		m.lastErr = res.Err
	case m.pending > 0:
		m.status = MutationPending
	default:
		m.status = MutationIdle
		m.lastErr = nil
	}
	m.mu.Unlock()

	if res.Err != nil && m.logger != nil {
		m.logger.WithError(res.Err).WithField("mutation", m.name).Warn("mutation failed")
	}
	return res
}

// Status returns the status of the latest submission and its error, if any.
func (m *Mutation[V, T]) Status() (MutationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.lastErr
}

// Reset clears an error status, e.g. when the form is reopened.
func (m *Mutation[V, T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == 0 {
		m.status = MutationIdle
		m.lastErr = nil
	}
}
