package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WorkerPoolOption is a functional option for configuring the worker pool.
type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	name        string
	logger      *zap.Logger
	rateLimiter *rate.Limiter
	affinity    bool
	registerer  prometheus.Registerer
}

func newConfig(opts ...WorkerPoolOption) *workerPoolConfig {
	cfg := &workerPoolConfig{
		name:   "default",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithName sets the pool name reported in log fields and metric labels.
// If not specified, defaults to "default".
func WithName(name string) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the logger used for pool lifecycle, batch and panic events.
// If not specified, nothing is logged.
func WithLogger(logger *zap.Logger) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRateLimit sets a rate limiter shared by all workers.
// tasksPerSecond specifies the maximum number of task starts per second.
// burst specifies the maximum number of tasks that can start in a burst.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithCPUAffinity locks every worker to its own OS thread and, where the
// platform supports it, pins that thread to core workerID % NumCPU.
func WithCPUAffinity() WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.affinity = true
	}
}

// WithMetrics registers the pool's Prometheus collectors on reg, labelled
// with the pool name. A nil reg disables metrics.
func WithMetrics(reg prometheus.Registerer) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if reg != nil {
			cfg.registerer = reg
		}
	}
}
