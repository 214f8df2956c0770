// Package latch provides a counting barrier that releases waiters once a
// known number of completions has been recorded.
package latch

import (
	"context"
	"sync"
)

// Counter is a one-shot completion counter. It is created with the number of
// expected completions; Wait blocks until Done has been called that many
// times.
//
// A Counter is safe for concurrent use. Any number of goroutines may wait on
// it, and a waiter abandoning Wait because its context ended leaves the
// counter untouched for everyone else.
type Counter struct {
	mu        sync.Mutex
	count     int
	total     int
	done      chan struct{}
	onRelease func()
}

// New creates a Counter expecting total completions. A non-positive total
// produces a counter that is already released.
func New(total int) *Counter {
	return NewFunc(total, nil)
}

// NewFunc is like New but calls onRelease exactly once, right before waiters
// are released. It runs on the goroutine recording the final completion, or
// inside NewFunc when total is not positive.
func NewFunc(total int, onRelease func()) *Counter {
	c := &Counter{
		total:     max(total, 0),
		done:      make(chan struct{}),
		onRelease: onRelease,
	}
	if c.total == 0 {
		c.release()
	}
	return c
}

func (c *Counter) release() {
	if c.onRelease != nil {
		c.onRelease()
	}
	close(c.done)
}

// Done records one completion. The call that brings the count to the total
// releases every waiter; calls beyond the total are ignored.
func (c *Counter) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count >= c.total {
		return
	}

	c.count++
	if c.count == c.total {
		c.release()
	}
}

// Wait blocks until all expected completions have been recorded or ctx is
// done, in which case the context's error is returned.
func (c *Counter) Wait(ctx context.Context) error {
	// Prefer reporting completion when both are ready.
	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Released returns a channel that is closed once the counter reaches its total.
func (c *Counter) Released() <-chan struct{} {
	return c.done
}

// Count returns the number of completions recorded so far.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Total returns the number of completions the counter waits for.
func (c *Counter) Total() int {
	return c.total
}
