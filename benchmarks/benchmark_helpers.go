package benchmarks

import (
	"context"
	"testing"
	"time"

	"github.com/utkarsh5026/shardpool/parallel"
	"github.com/utkarsh5026/shardpool/pool"
)

// executorConfig defines a benchmark configuration for one way of running shards
type executorConfig struct {
	name  string
	build func(b *testing.B, workers int) *parallel.Parallelism
}

// getAllExecutors returns the ephemeral and pooled executors for benchmarking
func getAllExecutors() []executorConfig {
	return []executorConfig{
		{
			name: "Ephemeral",
			build: func(*testing.B, int) *parallel.Parallelism {
				return parallel.New()
			},
		},
		{
			name: "Pooled",
			build: func(b *testing.B, workers int) *parallel.Parallelism {
				return parallel.New(parallel.WithPool(newPool(b, workers)))
			},
		},
		{
			name: "PooledPinned",
			build: func(b *testing.B, workers int) *parallel.Parallelism {
				return parallel.New(parallel.WithPool(newPool(b, workers, pool.WithCPUAffinity())))
			},
		},
	}
}

// newPool creates a pool that is closed when the benchmark ends
func newPool(b *testing.B, workers int, opts ...pool.WorkerPoolOption) *pool.WorkerPool {
	b.Helper()
	wp, err := pool.New(workers, opts...)
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	b.Cleanup(wp.Close)
	return wp
}

// runExecutorBenchmark runs benchFunc once per executor as a sub-benchmark
func runExecutorBenchmark(b *testing.B, workers int, benchFunc func(b *testing.B, p *parallel.Parallelism)) {
	for _, ec := range getAllExecutors() {
		b.Run(ec.name, func(b *testing.B) {
			benchFunc(b, ec.build(b, workers))
		})
	}
}

// makeInput returns the integers 0..n-1
func makeInput(n int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = i
	}
	return values
}

// cpuBoundWork simulates a CPU-intensive per-element operation
func cpuBoundWork(iterations int) func(v int) int {
	return func(v int) int {
		result := 0
		for i := 0; i < iterations; i++ {
			result += i * v
		}
		return result
	}
}

// ioBoundShard simulates a shard that waits on I/O once per shard
func ioBoundShard(delay time.Duration) parallel.ShardFunc[int, int] {
	return func(ctx context.Context, shard []int) (int, error) {
		select {
		case <-time.After(delay):
			return len(shard), nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// sumInts adds the per-shard results
func sumInts(parts []int) int {
	total := 0
	for _, p := range parts {
		total += p
	}
	return total
}

var sumMonoid = parallel.Monoid[int]{
	Identity: 0,
	Op:       func(a, b int) int { return a + b },
}
