// Package pool provides a fixed-size worker pool that executes batches of
// independent tasks and blocks the submitter until the whole batch is done.
//
// A WorkerPool owns n persistent worker goroutines and a single FIFO queue.
// Any number of goroutines may submit batches concurrently; their tasks
// interleave in the queue, but every batch owns its own completion counter
// and result slots, so batches never observe each other's results.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	squares, err := pool.Map(ctx, p, func(n int) int { return n * n }, []int{1, 2, 3})
//	// squares: []int{1, 4, 9}
//
// # Batches
//
// Run is the underlying primitive: it enqueues a slice of Task values and
// waits for all of them. Map builds on Run by assigning task i the job of
// writing f(args[i]) into result slot i, so results keep input order no
// matter which worker ran which task.
//
// # Cancellation
//
// Cancellation is cooperative. The context passed to Run or Map bounds how
// long the caller waits; when it ends, the caller gets ErrCanceled while
// queued and running tasks of that batch still execute. Tasks receive the
// same context and may observe it themselves.
//
// # Closing
//
// Close stops the workers without draining the queue. Tasks still queued
// are never executed, and a worker waiting on the rate limiter returns its
// task to the queue, so Close must only be called once no batch is
// outstanding. Done reports when every worker has exited.
//
// # Configuration Options
//
//   - WithLogger(l): zap logger for lifecycle and panic events (default: no-op)
//   - WithName(name): pool name used in logs and metric labels
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts across all workers
//   - WithCPUAffinity(): pin each worker to its own OS thread and CPU core
//   - WithMetrics(reg): register Prometheus collectors for queue and task activity
//
// # Error Handling
//
// A panicking task is recovered and reported as ErrTaskPanic together with
// its stack trace; its batch still completes. When several tasks of one batch
// fail, Run returns the error of the lowest task index.
package pool
