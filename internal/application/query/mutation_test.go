package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/caller-crm/internal/application/query"
)

type remoteError struct{ msg string }

func (e *remoteError) Error() string       { return "crm: " + e.msg }
func (e *remoteError) UserMessage() string { return e.msg }

func seed(t *testing.T, c *query.Cache, keys ...query.Key) {
	t.Helper()
	for _, k := range keys {
		st := c.Query(context.Background(), k, func(ctx context.Context) (any, error) { return "seed", nil })
		require.NoError(t, st.Err)
	}
}

func TestMutate_SuccessInvalidatesBeforeReturning(t *testing.T) {
	c := query.New(query.Options{})
	list, other := query.NewKey("customers", "V1"), query.NewKey("agents", "V1")
	seed(t, c, list, other)

	res := query.Mutate(context.Background(), c, func(ctx context.Context) (string, error) {
		return "C9", nil
	}, query.MutateOptions{OnSuccessInvalidate: []query.Key{query.NewKey("customers")}})

	require.True(t, res.OK())
	assert.Equal(t, "C9", res.Data)
	assert.Equal(t, 1, res.Invalidated)

	st, _ := c.Peek(list)
	assert.True(t, st.Stale)
	st, _ = c.Peek(other)
	assert.False(t, st.Stale)
}

func TestMutate_FailureLeavesCacheUntouched(t *testing.T) {
	c := query.New(query.Options{})
	list := query.NewKey("customers", "V1")
	seed(t, c, list)

	res := query.Mutate(context.Background(), c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, &remoteError{msg: "Email already exists"}
	}, query.MutateOptions{OnSuccessInvalidate: []query.Key{list}})

	assert.False(t, res.OK())
	assert.Equal(t, "Email already exists", res.Message)
	assert.Equal(t, 0, res.Invalidated)
	st, _ := c.Peek(list)
	assert.False(t, st.Stale)
}

func TestMessageFor_FallsBackWithoutRemoteMessage(t *testing.T) {
	assert.Equal(t, "", query.MessageFor(nil))
	assert.Equal(t, query.FallbackErrorMessage, query.MessageFor(errors.New("dial tcp: connection refused")))
	assert.Equal(t, query.FallbackErrorMessage, query.MessageFor(&remoteError{}))
	wrapped := errors.Join(errors.New("outer"), &remoteError{msg: "Phone already in use"})
	assert.Equal(t, "Phone already in use", query.MessageFor(wrapped))
}

func TestMutation_StatusLifecycle(t *testing.T) {
	c := query.New(query.Options{})
	entered := make(chan struct{})
	release := make(chan error)
	m := query.NewMutation("delete_contact", c, func(ctx context.Context, id string) (struct{}, error) {
		close(entered)
		return struct{}{}, <-release
	}, func(id string) []query.Key { return []query.Key{query.NewKey("customers")} }, nil)

	status, err := m.Status()
	assert.Equal(t, query.MutationIdle, status)
	assert.NoError(t, err)

	done := make(chan query.MutationResult[struct{}])
	go func() { done <- m.Mutate(context.Background(), "C1") }()
	<-entered
	status, _ = m.Status()
	assert.Equal(t, query.MutationPending, status)

	release <- &remoteError{msg: "Customer not found"}
	res := <-done
	assert.Equal(t, "Customer not found", res.Message)

	status, err = m.Status()
	assert.Equal(t, query.MutationError, status)
	assert.Error(t, err)

	m.Reset()
	status, err = m.Status()
	assert.Equal(t, query.MutationIdle, status)
	assert.NoError(t, err)
}
