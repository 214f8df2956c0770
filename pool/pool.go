package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/shardpool/internal/latch"
	"github.com/utkarsh5026/shardpool/internal/metrics"
)

// Task is a unit of work executed by a pool worker. It receives the context
// of the batch it was submitted with.
type Task func(ctx context.Context) error

// WorkerPool is a fixed set of persistent workers consuming one shared FIFO
// task queue. It is created running and stays usable until Close.
//
// The queue and the stop flag are guarded by a single mutex, and workers
// sleep on a condition variable tied to it while the queue is empty.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   taskQueue
	stopped bool

	workers     int
	name        string
	logger      *zap.Logger
	rateLimiter *rate.Limiter
	affinity    bool
	metrics     *metrics.Pool

	ctx    context.Context // canceled by Close
	cancel context.CancelFunc
	done   chan struct{} // closed when all workers have exited
}

// New starts a pool of workers goroutines.
// It returns ErrInvalidArgument if workers is less than one.
//
// Example:
//
//	p, err := pool.New(8,
//	    pool.WithName("shards"),
//	    pool.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
func New(workers int, opts ...WorkerPoolOption) (*WorkerPool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: worker count must be at least 1, got %d", ErrInvalidArgument, workers)
	}

	cfg := newConfig(opts...)

	var m *metrics.Pool
	if cfg.registerer != nil {
		var err error
		if m, err = metrics.NewPool(cfg.registerer, cfg.name); err != nil {
			return nil, fmt.Errorf("registering pool metrics: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		workers:     workers,
		name:        cfg.name,
		logger:      cfg.logger.With(zap.String("pool", cfg.name)),
		rateLimiter: cfg.rateLimiter,
		affinity:    cfg.affinity,
		metrics:     m,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			p.worker(i)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		p.logger.Debug("all workers exited")
		close(p.done)
	}()

	p.logger.Debug("pool started", zap.Int("workers", workers))
	return p, nil
}

// Workers returns the number of worker goroutines the pool was created with.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Pending returns the number of tasks waiting in the queue.
func (p *WorkerPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Run submits tasks as one batch and blocks until every task has finished.
//
// If ctx ends first, Run returns an error wrapping both ErrCanceled and the
// context's error; the batch's tasks are not withdrawn and still run.
// Otherwise Run returns the error of the lowest-indexed failing task, or nil.
func (p *WorkerPool) Run(ctx context.Context, tasks []Task) error {
	b, err := p.submit(ctx, tasks)
	if err != nil {
		return err
	}
	if err := b.wait(ctx); err != nil {
		return err
	}
	return b.err()
}

// Map applies f to every element of args on the pool's workers and returns
// the results in input order: result i is always f(args[i]).
//
// Map fails with ErrInvalidArgument if f is nil, ErrPoolClosed after Close,
// ErrCanceled if ctx ends before the batch completes (no results are returned
// then), and ErrTaskPanic if f panicked for some element.
func Map[T, R any](ctx context.Context, p *WorkerPool, f func(T) R, args []T) ([]R, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil map function", ErrInvalidArgument)
	}

	results := make([]R, len(args))
	tasks := make([]Task, len(args))
	for i := range args {
		tasks[i] = func(context.Context) error {
			results[i] = f(args[i])
			return nil
		}
	}

	b, err := p.submit(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if err := b.wait(ctx); err != nil {
		// Workers may still be writing into results.
		return nil, err
	}
	return results, b.err()
}

// Close signals every worker to stop and returns without waiting. Workers
// finish the task they are running and exit; tasks still queued are never
// executed. A worker parked in the rate limiter puts its task back in the
// queue first, so Pending counts every abandoned task.
// Close is idempotent. Use Done to wait for the workers to exit.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	abandoned := p.queue.len()
	p.mu.Unlock()

	p.cond.Broadcast()
	p.cancel()

	p.logger.Debug("pool closed", zap.Int("abandoned_tasks", abandoned))
}

// Done returns a channel that is closed once every worker has exited after Close.
func (p *WorkerPool) Done() <-chan struct{} {
	return p.done
}

// batch is the caller-side view of one submission: a completion counter and
// one error slot per task, shared with no other batch.
type batch struct {
	pool    *WorkerPool
	id      uuid.UUID
	counter *latch.Counter
	errs    []error
}

// submit enqueues tasks under the pool lock and wakes the workers.
func (p *WorkerPool) submit(ctx context.Context, tasks []Task) (*batch, error) {
	for i, t := range tasks {
		if t == nil {
			return nil, fmt.Errorf("%w: nil task at index %d", ErrInvalidArgument, i)
		}
	}

	b := &batch{
		pool: p,
		id:   uuid.New(),
		errs: make([]error, len(tasks)),
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	// The batch stays in flight until its last task completes, even if the
	// caller stops waiting earlier.
	p.metrics.BatchStarted()
	b.counter = latch.NewFunc(len(tasks), p.metrics.BatchFinished)
	p.metrics.Submitted(len(tasks))
	for i, t := range tasks {
		p.queue.push(&queuedTask{
			ctx:     ctx,
			run:     t,
			slot:    &b.errs[i],
			counter: b.counter,
			batch:   b.id,
			index:   i,
		})
	}
	p.mu.Unlock()

	p.cond.Broadcast()

	p.logger.Debug("batch submitted",
		zap.String("batch", b.id.String()),
		zap.Int("tasks", len(tasks)),
	)
	return b, nil
}

// wait blocks until every task of the batch has signaled the counter.
func (b *batch) wait(ctx context.Context) error {
	if err := b.counter.Wait(ctx); err != nil {
		b.pool.logger.Debug("stopped waiting for batch",
			zap.String("batch", b.id.String()),
			zap.Int("completed", b.counter.Count()),
			zap.Int("total", b.counter.Total()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return nil
}

// err returns the first task error in submission order.
// It must only be called after wait succeeded.
func (b *batch) err() error {
	for _, err := range b.errs {
		if err != nil {
			return err
		}
	}
	return nil
}
