package parallel

import (
	"context"
	"fmt"
	"runtime"

	"github.com/utkarsh5026/shardpool/pool"
)

// Executor runs a batch of shard tasks and blocks until all of them have
// finished or the caller's context ends.
//
// Implementations return ErrCanceled (wrapping the context error) when the
// caller stops waiting, and otherwise the error of the lowest-indexed failing
// task.
type Executor interface {
	Execute(ctx context.Context, tasks []pool.Task) error
}

// EphemeralExecutor runs every task on its own goroutine, started for the
// call and joined in task order.
//
// Each task gets a context that carries the caller's values but not its
// cancellation. If the caller's context ends while task i is being joined,
// the contexts of tasks i+1 and later are canceled and Execute returns
// without waiting for them. Task i itself and earlier tasks are left alone.
type EphemeralExecutor struct{}

type joinHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Execute implements Executor.
func (EphemeralExecutor) Execute(ctx context.Context, tasks []pool.Task) error {
	for i, t := range tasks {
		if t == nil {
			return fmt.Errorf("%w: nil task at index %d", ErrInvalidArgument, i)
		}
	}

	detached := context.WithoutCancel(ctx)
	handles := make([]*joinHandle, len(tasks))
	for i, t := range tasks {
		taskCtx, cancel := context.WithCancel(detached)
		h := &joinHandle{cancel: cancel, done: make(chan struct{})}
		handles[i] = h

		go func() {
			defer close(h.done)
			defer cancel()
			h.err = runRecovered(taskCtx, t)
		}()
	}

	for i, h := range handles {
		// A finished task is joined even if the caller was canceled meanwhile.
		select {
		case <-h.done:
			continue
		default:
		}

		select {
		case <-h.done:
		case <-ctx.Done():
			for _, rest := range handles[i+1:] {
				rest.cancel()
			}
			return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
	}

	for _, h := range handles {
		if h.err != nil {
			return h.err
		}
	}
	return nil
}

// runRecovered executes a task, converting a panic into ErrTaskPanic.
func runRecovered(ctx context.Context, t pool.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrTaskPanic, r, buf[:n])
		}
	}()
	return t(ctx)
}

// PooledExecutor submits all tasks of a call as a single batch to a shared
// worker pool.
type PooledExecutor struct {
	Pool *pool.WorkerPool
}

// Execute implements Executor.
func (e PooledExecutor) Execute(ctx context.Context, tasks []pool.Task) error {
	if e.Pool == nil {
		return fmt.Errorf("%w: pooled executor without a pool", ErrInvalidArgument)
	}
	return e.Pool.Run(ctx, tasks)
}
