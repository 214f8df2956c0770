package parallel

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/utkarsh5026/shardpool/pool"
)

// executorConfig names one way of running shards under test.
type executorConfig struct {
	name  string
	build func(t *testing.T) *Parallelism
}

func allExecutors() []executorConfig {
	return []executorConfig{
		{
			name:  "Ephemeral",
			build: func(t *testing.T) *Parallelism {
				return New(WithLogger(zaptest.NewLogger(t)))
			},
		},
		{
			name:  "Pooled",
			build: func(t *testing.T) *Parallelism {
				wp, err := pool.New(3, pool.WithLogger(zaptest.NewLogger(t)))
				require.NoError(t, err)
				// The pool logs after its workers exit, so wait for them
				// before the test logger goes away.
				t.Cleanup(func() {
					wp.Close()
					<-wp.Done()
				})
				return New(WithPool(wp), WithLogger(zaptest.NewLogger(t)))
			},
		},
	}
}

// runExecutorTest runs testFunc once per executor as a subtest.
func runExecutorTest(t *testing.T, testFunc func(t *testing.T, p *Parallelism)) {
	for _, ec := range allExecutors() {
		t.Run(ec.name, func(t *testing.T) {
			testFunc(t, ec.build(t))
		})
	}
}

func ints(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func isOdd(n int) bool { return n%2 != 0 }
