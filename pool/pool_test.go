package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_InvalidWorkerCount(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			p, err := New(n)
			if err == nil {
				p.Close()
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestMap_BasicFunctionality(t *testing.T) {
	p := newTestPool(t, 3)

	args := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	f := func(n int) int { return n * n }

	results, err := Map(context.Background(), p, f, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != len(args) {
		t.Fatalf("expected %d results, got %d", len(args), len(results))
	}
	for i, a := range args {
		if results[i] != f(a) {
			t.Errorf("slot %d: expected %d, got %d", i, f(a), results[i])
		}
	}
}

func TestMap_EmptyArgs(t *testing.T) {
	p := newTestPool(t, 2)

	results, err := Map(context.Background(), p, func(n int) string { return fmt.Sprint(n) }, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestMap_NilFunction(t *testing.T) {
	p := newTestPool(t, 1)

	_, err := Map[int, int](context.Background(), p, nil, []int{1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMap_OrderIndependentOfCompletion(t *testing.T) {
	p := newTestPool(t, 4)

	// Earlier elements sleep longer, so they finish last.
	args := sequence(8)
	results, err := Map(context.Background(), p, func(n int) int {
		time.Sleep(time.Duration(len(args)-n) * 2 * time.Millisecond)
		return n * 10
	}, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range args {
		if results[i] != i*10 {
			t.Errorf("slot %d: expected %d, got %d", i, i*10, results[i])
		}
	}
}

func TestMap_ConcurrentBatches(t *testing.T) {
	p := newTestPool(t, 3)

	const callers = 8
	const size = 250

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for c := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			args := make([]int, size)
			for i := range args {
				args[i] = c*size + i
			}

			results, err := Map(context.Background(), p, func(n int) int { return -n }, args)
			if err != nil {
				errs <- err
				return
			}
			for i := range args {
				if results[i] != -args[i] {
					errs <- fmt.Errorf("caller %d slot %d: expected %d, got %d", c, i, -args[i], results[i])
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRun_ExecutesEveryTaskOnce(t *testing.T) {
	p := newTestPool(t, 4)

	const n = 100
	var counts [n]atomic.Int32
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			counts[i].Add(1)
			return nil
		}
	}

	if err := p.Run(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range counts {
		if got := counts[i].Load(); got != 1 {
			t.Errorf("task %d ran %d times", i, got)
		}
	}
}

func TestRun_TasksReceiveBatchContext(t *testing.T) {
	p := newTestPool(t, 2)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "batch-value")

	var seen atomic.Value
	err := p.Run(ctx, []Task{func(ctx context.Context) error {
		seen.Store(ctx.Value(key{}))
		return nil
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Load() != "batch-value" {
		t.Errorf("task did not receive the batch context, got %v", seen.Load())
	}
}

func TestRun_NilTask(t *testing.T) {
	p := newTestPool(t, 1)

	err := p.Run(context.Background(), []Task{nil})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWorkers(t *testing.T) {
	p := newTestPool(t, 5)
	if p.Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", p.Workers())
	}
}

func TestWithCPUAffinity(t *testing.T) {
	p := newTestPool(t, 2, WithCPUAffinity())

	results, err := Map(context.Background(), p, func(n int) int { return n + 1 }, sequence(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range results {
		if r != i+1 {
			t.Errorf("slot %d: expected %d, got %d", i, i+1, r)
		}
	}
}
