package parallel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/utkarsh5026/shardpool/internal/partition"
	"github.com/utkarsh5026/shardpool/pool"
)

// ShardFunc computes the partial result of one shard. The shard is a
// read-only view of a contiguous range of the input.
type ShardFunc[T, R any] func(ctx context.Context, shard []T) (R, error)

// CombineFunc merges the per-shard results, given in shard order.
type CombineFunc[R any] func(results []R) R

// Parallelism holds the executor and logger shared by the operations of
// this package. The zero value and a nil *Parallelism both run shards on
// ephemeral goroutines.
type Parallelism struct {
	exec   Executor
	logger *zap.Logger
}

// Option configures a Parallelism.
type Option func(*Parallelism)

// WithPool runs shards as batches on wp instead of ephemeral goroutines.
func WithPool(wp *pool.WorkerPool) Option {
	return func(p *Parallelism) {
		if wp != nil {
			p.exec = PooledExecutor{Pool: wp}
		}
	}
}

// WithExecutor runs shards on a custom executor.
func WithExecutor(e Executor) Option {
	return func(p *Parallelism) {
		if e != nil {
			p.exec = e
		}
	}
}

// WithLogger sets the logger used to trace shard dispatch.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parallelism) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Parallelism. Without options it uses EphemeralExecutor and
// does not log.
func New(opts ...Option) *Parallelism {
	p := &Parallelism{
		exec:   EphemeralExecutor{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parallelism) executor() Executor {
	if p == nil || p.exec == nil {
		return EphemeralExecutor{}
	}
	return p.exec
}

func (p *Parallelism) log() *zap.Logger {
	if p == nil || p.logger == nil {
		return zap.NewNop()
	}
	return p.logger
}

// Do splits values into at most threads contiguous shards, applies shardFn to
// every shard on p's executor and combines the results in shard order on the
// calling goroutine.
//
// threads is clamped to [1, max(1, len(values))]; an empty input is processed
// as a single empty shard, for which shardFn must produce the neutral result
// or an error. Do fails with ErrInvalidArgument, before any work starts, if
// threads is below one or a function is nil. Shard errors are reported by
// lowest shard index; combine is not called then.
func Do[T, R any](
	ctx context.Context,
	p *Parallelism,
	threads int,
	values []T,
	shardFn ShardFunc[T, R],
	combine CombineFunc[R],
) (R, error) {
	var zero R
	if threads < 1 {
		return zero, fmt.Errorf("%w: thread count must be at least 1, got %d", ErrInvalidArgument, threads)
	}
	if shardFn == nil || combine == nil {
		return zero, fmt.Errorf("%w: nil shard or combine function", ErrInvalidArgument)
	}

	shards := partition.Shards(len(values), threads)
	results := make([]R, len(shards))
	tasks := make([]pool.Task, len(shards))
	for i, s := range shards {
		tasks[i] = func(ctx context.Context) error {
			r, err := shardFn(ctx, values[s.Start:s.End:s.End])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		}
	}

	exec := p.executor()
	p.log().Debug("dispatching shards",
		zap.Int("elements", len(values)),
		zap.Int("shards", len(shards)),
		zap.String("executor", fmt.Sprintf("%T", exec)),
	)

	if err := exec.Execute(ctx, tasks); err != nil {
		return zero, err
	}
	return combine(results), nil
}
