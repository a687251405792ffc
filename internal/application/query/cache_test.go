package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/caller-crm/internal/application/query"
	tmocks "github.com/avatarctic/caller-crm/test/mocks"
)

type contactRow struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func countingFetch(calls *int32, data any) query.FetchFunc {
	return func(ctx context.Context) (any, error) {
		atomic.AddInt32(calls, 1)
		return data, nil
	}
}

func TestQuery_ConcurrentRegistrationsShareOneFetch(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("customers", "V1")

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-release
		return []string{"a"}, nil
	}

	var wg sync.WaitGroup
	results := make([]query.State, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = c.Query(context.Background(), key, fetch)
	}()
	<-started
	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Query(context.Background(), key, fetch)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, st := range results {
		assert.Equal(t, query.StatusSuccess, st.Status)
		assert.Equal(t, []string{"a"}, st.Data)
	}
}

func TestQuery_FreshEntryServedWithoutFetch(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("agents", "V1")
	var calls int32

	first := c.Query(context.Background(), key, countingFetch(&calls, 1))
	second := c.Query(context.Background(), key, countingFetch(&calls, 2))

	require.Equal(t, int32(1), calls)
	assert.Equal(t, 1, first.Data)
	assert.Equal(t, 1, second.Data)
	assert.False(t, second.FetchedAt.IsZero())
}

func TestQuery_StaleTimeTriggersRefetch(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := query.New(query.Options{StaleTime: time.Minute, Now: func() time.Time { return now }})
	key := query.NewKey("calls", "V1", "")
	var calls int32

	c.Query(context.Background(), key, countingFetch(&calls, "x"))
	now = now.Add(30 * time.Second)
	c.Query(context.Background(), key, countingFetch(&calls, "x"))
	require.Equal(t, int32(1), calls)

	now = now.Add(time.Minute)
	c.Query(context.Background(), key, countingFetch(&calls, "x"))
	require.Equal(t, int32(2), calls)
}

func TestInvalidate_NextRegistrationRefetches(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("customers", "V1")
	var calls int32

	c.Query(context.Background(), key, countingFetch(&calls, "v1"))
	require.Equal(t, 1, c.Invalidate(key))

	st, ok := c.Peek(key)
	require.True(t, ok)
	assert.True(t, st.Stale)
	assert.Equal(t, "v1", st.Data)
	assert.Equal(t, int32(1), calls, "invalidation alone never fetches")

	st = c.Query(context.Background(), key, countingFetch(&calls, "v2"))
	assert.Equal(t, int32(2), calls)
	assert.Equal(t, "v2", st.Data)
	assert.False(t, st.Stale)
}

func TestInvalidate_UnknownKeyIsNoop(t *testing.T) {
	c := query.New(query.Options{})
	assert.Equal(t, 0, c.Invalidate(query.NewKey("customers", "nobody")))
	assert.Equal(t, 0, c.InvalidatePrefix(query.NewKey("calls")))
	assert.Equal(t, 0, c.Len())
}

func TestInvalidatePrefix_MarksOnlyMatchingKeys(t *testing.T) {
	c := query.New(query.Options{})
	var calls int32
	for _, k := range []query.Key{
		query.NewKey("calls", "V1", "A"),
		query.NewKey("calls", "V1", "B"),
		query.NewKey("customers", "V1"),
	} {
		c.Query(context.Background(), k, countingFetch(&calls, "x"))
	}

	require.Equal(t, 2, c.InvalidatePrefix(query.NewKey("calls", "V1")))
	st, _ := c.Peek(query.NewKey("customers", "V1"))
	assert.False(t, st.Stale)
	st, _ = c.Peek(query.NewKey("calls", "V1", "B"))
	assert.True(t, st.Stale)
}

func TestRefetch_SupersededResponseIsDiscarded(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("customers", "V1")

	startedOld := make(chan struct{})
	releaseOld := make(chan struct{})
	releaseNew := make(chan struct{})
	oldFetch := func(ctx context.Context) (any, error) {
		close(startedOld)
		<-releaseOld
		return "old", nil
	}
	newFetch := func(ctx context.Context) (any, error) {
		<-releaseNew
		return "new", nil
	}

	var oldState, newState query.State
	oldDone := make(chan struct{})
	newDone := make(chan struct{})
	go func() {
		oldState = c.Query(context.Background(), key, oldFetch)
		close(oldDone)
	}()
	<-startedOld
	go func() {
		newState = c.Refetch(context.Background(), key, newFetch)
		close(newDone)
	}()
	require.Eventually(t, func() bool {
		st, _ := c.Peek(key)
		return st.Generation == 2
	}, time.Second, 5*time.Millisecond)

	close(releaseNew)
	<-newDone
	close(releaseOld)
	<-oldDone

	assert.Equal(t, "new", newState.Data)
	assert.False(t, newState.Stale)
	assert.Equal(t, "old", oldState.Data)
	assert.True(t, oldState.Stale)

	st, _ := c.Peek(key)
	assert.Equal(t, "new", st.Data)
	assert.Equal(t, query.StatusSuccess, st.Status)
}

func TestInvalidate_DetachesInFlightFetch(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("customers", "V1")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan query.State, 1)
	go func() {
		done <- c.Query(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "before-delete", nil
		})
	}()
	<-started

	require.Equal(t, 1, c.Invalidate(key))
	close(release)
	st := <-done
	assert.True(t, st.Stale)

	peek, _ := c.Peek(key)
	assert.Nil(t, peek.Data)
	assert.NotEqual(t, query.StatusLoading, peek.Status)

	var calls int32
	st = c.Query(context.Background(), key, countingFetch(&calls, "after-delete"))
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, "after-delete", st.Data)
}

func TestQuery_ErrorKeepsLastData(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("agents", "V1")
	var calls int32
	c.Query(context.Background(), key, countingFetch(&calls, "cached"))
	c.Invalidate(key)

	st := c.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, errors.New("service unavailable")
	})
	assert.Equal(t, query.StatusError, st.Status)
	assert.EqualError(t, st.Err, "service unavailable")
	assert.Equal(t, "service unavailable", st.ErrorMessage())
	assert.Equal(t, "cached", st.Data)
}

func TestQuery_PanickingFetchBecomesError(t *testing.T) {
	c := query.New(query.Options{})
	st := c.Query(context.Background(), query.NewKey("boom"), func(ctx context.Context) (any, error) {
		panic("nil map")
	})
	assert.Equal(t, query.StatusError, st.Status)
	assert.ErrorContains(t, st.Err, "nil map")
}

func TestQuery_CallerCancellationDoesNotCancelFetch(t *testing.T) {
	c := query.New(query.Options{})
	key := query.NewKey("customers", "V1")
	release := make(chan struct{})
	fetched := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	st := c.Query(ctx, key, func(fctx context.Context) (any, error) {
		<-release
		defer close(fetched)
		return "done", fctx.Err()
	})
	assert.ErrorIs(t, st.Err, context.Canceled)

	close(release)
	<-fetched
	require.Eventually(t, func() bool {
		p, _ := c.Peek(key)
		return p.Status == query.StatusSuccess && p.Data == "done"
	}, time.Second, 5*time.Millisecond)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := query.New(query.Options{MaxEntries: 2})
	var calls int32
	a, b, d := query.NewKey("a"), query.NewKey("b"), query.NewKey("d")

	c.Query(context.Background(), a, countingFetch(&calls, 1))
	c.Query(context.Background(), b, countingFetch(&calls, 2))
	c.Query(context.Background(), a, countingFetch(&calls, 1))
	c.Query(context.Background(), d, countingFetch(&calls, 3))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Peek(b)
	assert.False(t, ok)
	_, ok = c.Peek(a)
	assert.True(t, ok)
}

func TestGet_TypedResultAndSnapshotHydration(t *testing.T) {
	store := tmocks.NewMemoryCache()
	key := query.NewKey("customers", "V1")
	rows := []contactRow{{ID: "C1", Name: "Sarah Wilson"}}

	first := query.New(query.Options{Persister: store})
	got, st := query.Get(context.Background(), first, key, func(ctx context.Context) ([]contactRow, error) {
		return rows, nil
	})
	require.NoError(t, st.Err)
	assert.Equal(t, rows, got)
	require.Len(t, store.Keys(), 1)

	// a fresh process that cannot reach the service still shows the snapshot
	second := query.New(query.Options{Persister: store})
	got, st = query.Get(context.Background(), second, key, func(ctx context.Context) ([]contactRow, error) {
		return nil, errors.New("connection refused")
	})
	assert.Equal(t, query.StatusError, st.Status)
	assert.Equal(t, rows, got)
}
