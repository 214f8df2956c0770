// Package parallel runs list operations by splitting the input into
// contiguous shards, processing every shard concurrently and combining the
// per-shard results in shard order.
//
// Every operation takes a thread count, the requested number of shards. It
// is clamped to the input length, so no shard is ever empty unless the
// input itself is.
//
// # Executors
//
// Shards are executed by an Executor chosen when the Parallelism value is
// built:
//
//   - EphemeralExecutor (default) starts one goroutine per shard for the
//     duration of the call.
//   - PooledExecutor submits all shards as one batch to a shared
//     pool.WorkerPool, reusing its long-lived workers across calls.
//
//	p := parallel.New() // ephemeral goroutines
//
//	wp, _ := pool.New(runtime.NumCPU())
//	defer wp.Close()
//	pp := parallel.New(parallel.WithPool(wp))
//
//	best, err := parallel.Maximum(ctx, pp, 4, cmp.Compare[int], values)
//
// # Operations
//
// Map, Filter, Join, Count, All, Any, Maximum and Minimum are thin
// specialisations of Do. Reduce and MapReduce generalise them with an
// explicit Monoid: an identity and an associative operator used both inside
// a shard and across shards.
//
// # Cancellation
//
// Cancellation is best-effort. When the caller's context ends while shards
// are still running, the operation returns ErrCanceled; in ephemeral mode
// the shards not yet joined have their contexts canceled, but none of them
// is stopped forcibly.
package parallel
