package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/shardpool/pool"
)

// shardRecorder collects the shards handed to a shard function.
type shardRecorder struct {
	mu     sync.Mutex
	shards map[int][]int // first element -> shard
	calls  int
}

func (r *shardRecorder) sum(_ context.Context, shard []int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(shard) > 0 {
		if r.shards == nil {
			r.shards = make(map[int][]int)
		}
		r.shards[shard[0]] = append([]int(nil), shard...)
	}
	total := 0
	for _, v := range shard {
		total += v
	}
	return total, nil
}

func sumAll(parts []int) int {
	total := 0
	for _, p := range parts {
		total += p
	}
	return total
}

func TestDo_InvalidArguments(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		var rec shardRecorder

		for _, threads := range []int{0, -1} {
			_, err := Do(context.Background(), p, threads, ints(4), rec.sum, sumAll)
			assert.ErrorIs(t, err, ErrInvalidArgument, "threads=%d", threads)
		}

		_, err := Do[int, int](context.Background(), p, 2, ints(4), nil, sumAll)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = Do(context.Background(), p, 2, ints(4), rec.sum, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		assert.Zero(t, rec.calls, "no shard may run when arguments are invalid")
	})
}

func TestDo_SingleThreadIsOneShard(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		values := []int{4, 8, 15, 16, 23, 42}
		var rec shardRecorder

		got, err := Do(context.Background(), p, 1, values, rec.sum, sumAll)
		require.NoError(t, err)

		direct, _ := (&shardRecorder{}).sum(context.Background(), values)
		assert.Equal(t, sumAll([]int{direct}), got)
		assert.Equal(t, 1, rec.calls)
		assert.Equal(t, values, rec.shards[4])
	})
}

func TestDo_ClampsThreadsToLength(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		var rec shardRecorder

		got, err := Do(context.Background(), p, 50, []int{1, 2, 3}, rec.sum, sumAll)
		require.NoError(t, err)
		assert.Equal(t, 6, got)
		assert.Equal(t, 3, rec.calls)
	})
}

func TestDo_EmptyInputIsOneEmptyShard(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		for _, values := range [][]int{nil, {}} {
			var rec shardRecorder
			got, err := Do(context.Background(), p, 4, values, rec.sum, sumAll)
			require.NoError(t, err)
			assert.Equal(t, 0, got)
			assert.Equal(t, 1, rec.calls)
		}
	})
}

func TestDo_ShardsAreContiguous(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		var rec shardRecorder
		_, err := Do(context.Background(), p, 3, ints(10), rec.sum, sumAll)
		require.NoError(t, err)

		assert.Equal(t, map[int][]int{
			0: {0, 1, 2, 3},
			4: {4, 5, 6},
			7: {7, 8, 9},
		}, rec.shards)
	})
}

func TestDo_CombinesInShardOrder(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		values := ints(40)

		// Earlier shards finish last.
		got, err := Do(context.Background(), p, 8, values,
			func(_ context.Context, shard []int) ([]int, error) {
				time.Sleep(time.Duration(40-shard[0]) * time.Millisecond / 4)
				return shard, nil
			},
			concat[int],
		)
		require.NoError(t, err)
		assert.Equal(t, values, got)
	})
}

func TestDo_ShardCannotAppendIntoNeighbour(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		values := ints(6)
		_, err := Do(context.Background(), p, 2, values,
			func(_ context.Context, shard []int) (int, error) {
				_ = append(shard, -1)
				return 0, nil
			},
			sumAll,
		)
		require.NoError(t, err)
		assert.Equal(t, ints(6), values)
	})
}

func TestDo_ShardErrorByLowestIndex(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		errLow := errors.New("shard starting at 2 failed")
		errHigh := errors.New("shard starting at 6 failed")

		var combined atomic.Bool
		_, err := Do(context.Background(), p, 4, ints(8),
			func(_ context.Context, shard []int) (int, error) {
				switch shard[0] {
				case 2:
					time.Sleep(20 * time.Millisecond)
					return 0, errLow
				case 6:
					return 0, errHigh
				}
				return 1, nil
			},
			func(parts []int) int {
				combined.Store(true)
				return sumAll(parts)
			},
		)
		assert.ErrorIs(t, err, errLow)
		assert.False(t, combined.Load(), "combine must not run after a shard error")
	})
}

func TestDo_ShardPanic(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		_, err := Do(context.Background(), p, 2, ints(4),
			func(_ context.Context, shard []int) (int, error) {
				if shard[0] == 2 {
					panic("boom")
				}
				return 0, nil
			},
			sumAll,
		)
		assert.ErrorIs(t, err, ErrTaskPanic)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestDo_NilParallelismUsesEphemeral(t *testing.T) {
	got, err := Do(context.Background(), nil, 3, ints(10), (&shardRecorder{}).sum, sumAll)
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	var zero Parallelism
	got, err = Do(context.Background(), &zero, 3, ints(10), (&shardRecorder{}).sum, sumAll)
	require.NoError(t, err)
	assert.Equal(t, 45, got)
}

func TestDo_ConcurrentCallersShareOnePool(t *testing.T) {
	wp, err := pool.New(4)
	require.NoError(t, err)
	defer wp.Close()
	p := New(WithPool(wp))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for c := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values := make([]int, 100+c)
			for i := range values {
				values[i] = c*1000 + i
			}
			got, err := Map(context.Background(), p, 3+c%5, func(v int) int { return v * 2 }, values)
			if err != nil {
				errs <- err
				return
			}
			for i, v := range values {
				if got[i] != v*2 {
					errs <- fmt.Errorf("caller %d index %d: got %d, want %d", c, i, got[i], v*2)
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

func TestDo_CanceledWhileJoining(t *testing.T) {
	runExecutorTest(t, func(t *testing.T, p *Parallelism) {
		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := Do(ctx, p, 2, ints(4),
				func(_ context.Context, shard []int) (int, error) {
					<-release
					return 0, nil
				},
				sumAll,
			)
			errCh <- err
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrCanceled)
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Do did not return after cancellation")
		}
	})
}
