package pool

import (
	"testing"
	"time"
)

// newTestPool creates a pool, closes it when the test ends and waits for its
// workers to exit, so nothing logs through a finished test's logger.
func newTestPool(t *testing.T, workers int, opts ...WorkerPoolOption) *WorkerPool {
	t.Helper()
	p, err := New(workers, opts...)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() {
		p.Close()
		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Error("workers did not exit after Close")
		}
	})
	return p
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
