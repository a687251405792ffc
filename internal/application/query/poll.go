package query

import (
	"context"
	"time"
)

// Poller is a running Poll loop.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop ends the loop and blocks until its goroutine has exited.
func (p *Poller) Stop() {
	p.cancel()
	<-p.done
}

// Done is closed once the loop has exited, whether through Stop, its context
// or Cache.Close.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Poll refetches key every interval until ctx is done, Stop is called or the
// cache is closed. onUpdate receives every resolved state. Polling a closed
// cache returns a Poller that is already done.
//
// Ticks register with a stale time of half the interval, so several pollers of
// the same key share one fetch per tick.
func (c *Cache) Poll(ctx context.Context, key Key, fetch FetchFunc, interval time.Duration, onUpdate func(State)) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	// registration and Close share c.mu so Add never races Wait
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		cancel()
		close(p.done)
		return p
	default:
	}
	c.pollers.Add(1)
	c.mu.Unlock()

	go func() {
		select {
		case <-c.closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer c.pollers.Done()
		defer close(p.done)
		defer cancel()

		tick := func() {
			st := c.Query(ctx, key, fetch, WithStaleTime(interval/2))
			if ctx.Err() == nil && onUpdate != nil {
				onUpdate(st)
			}
		}

		if ctx.Err() != nil {
			return
		}
		tick()

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				tick()
			}
		}
	}()

	return p
}
