package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/utkarsh5026/shardpool/parallel"
	"github.com/utkarsh5026/shardpool/pool"
)

// Result is the measurement of one (mode, threads) configuration.
type Result struct {
	Mode     string
	Threads  int
	Median   time.Duration
	Min      time.Duration
	Max      time.Duration
	Checksum uint64
	Speedup  float64
}

func run(ctx context.Context, out io.Writer, cfg *Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	op, err := newOperation(cfg.Operation, cfg.Work)
	if err != nil {
		return err
	}

	// reg stays a nil interface unless metrics are requested.
	var (
		registry *prometheus.Registry
		reg      prometheus.Registerer
	)
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		reg = registry
	}

	modes := cfg.modes()
	executors := make(map[string]*parallel.Parallelism, len(modes))
	for _, mode := range modes {
		p, closePool, err := newParallelism(mode, cfg, logger, reg)
		if err != nil {
			return err
		}
		defer closePool()
		executors[mode] = p
	}

	values := generate(cfg.Elements)
	printConfiguration(out, cfg)

	bar := makeProgressBar(len(modes) * len(cfg.Threads))
	results := make([]Result, 0, len(modes)*len(cfg.Threads))
	for _, mode := range modes {
		for _, threads := range cfg.Threads {
			bar.Describe(fmt.Sprintf("%s, %d threads", mode, threads))

			r, err := measure(ctx, op, executors[mode], threads, values, cfg)
			if err != nil {
				_ = bar.Clear()
				return fmt.Errorf("%s with %d threads: %w", mode, threads, err)
			}
			r.Mode = mode
			logger.Debug("configuration measured",
				zap.String("mode", mode),
				zap.Int("threads", threads),
				zap.Duration("median", r.Median),
			)
			results = append(results, r)
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()

	computeSpeedups(results)
	if err := checkChecksums(results); err != nil {
		logger.Error("operation results differ between configurations", zap.Error(err))
		return err
	}
	printResults(out, cfg, results)

	if registry != nil {
		return printMetrics(out, registry)
	}
	return nil
}

// newParallelism builds the executor for mode. The returned func releases
// any pool it created.
func newParallelism(mode string, cfg *Config, logger *zap.Logger, reg prometheus.Registerer) (*parallel.Parallelism, func(), error) {
	if mode == modeEphemeral {
		return parallel.New(parallel.WithLogger(logger)), func() {}, nil
	}

	opts := []pool.WorkerPoolOption{
		pool.WithName("shardbench"),
		pool.WithLogger(logger),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, pool.WithRateLimit(float64(cfg.RateLimit), 1))
	}
	if cfg.Affinity {
		opts = append(opts, pool.WithCPUAffinity())
	}
	if reg != nil {
		opts = append(opts, pool.WithMetrics(reg))
	}

	wp, err := pool.New(cfg.Workers, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return parallel.New(parallel.WithPool(wp), parallel.WithLogger(logger)), wp.Close, nil
}

// measure runs the warmup rounds and then cfg.Iterations timed rounds.
func measure(ctx context.Context, op operation, p *parallel.Parallelism, threads int, values []uint64, cfg *Config) (Result, error) {
	for range cfg.Warmup {
		if _, err := op(ctx, p, threads, values); err != nil {
			return Result{}, err
		}
	}

	times := make([]time.Duration, 0, cfg.Iterations)
	var checksum uint64
	for i := range cfg.Iterations {
		start := time.Now()
		sum, err := op(ctx, p, threads, values)
		if err != nil {
			return Result{}, err
		}
		times = append(times, time.Since(start))
		if i == 0 {
			checksum = sum
		}
		runtime.GC()
	}

	slices.Sort(times)
	return Result{
		Threads:  threads,
		Median:   times[len(times)/2],
		Min:      times[0],
		Max:      times[len(times)-1],
		Checksum: checksum,
	}, nil
}

// computeSpeedups sets every result's speedup relative to the result with
// the fewest threads in the same mode.
func computeSpeedups(results []Result) {
	baseline := make(map[string]Result)
	for _, r := range results {
		b, ok := baseline[r.Mode]
		if !ok || r.Threads < b.Threads {
			baseline[r.Mode] = r
		}
	}
	for i := range results {
		b := baseline[results[i].Mode]
		if results[i].Median > 0 {
			results[i].Speedup = float64(b.Median) / float64(results[i].Median)
		}
	}
}

// checkChecksums reports an error when two configurations computed
// different results for the same input.
func checkChecksums(results []Result) error {
	for _, r := range results[1:] {
		if r.Checksum != results[0].Checksum {
			return fmt.Errorf("checksum mismatch: %s/%d threads got %#x, %s/%d threads got %#x",
				results[0].Mode, results[0].Threads, results[0].Checksum,
				r.Mode, r.Threads, r.Checksum)
		}
	}
	return nil
}
