package main

import (
	"cmp"
	"context"
	"fmt"

	"github.com/utkarsh5026/shardpool/parallel"
)

// operation runs one parallel operation over values and returns a checksum
// so the work cannot be optimized away.
type operation func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error)

// generate returns n pseudo-random values from a fixed xorshift sequence.
func generate(n int) []uint64 {
	values := make([]uint64, n)
	state := uint64(88172645463325252)
	for i := range values {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		values[i] = state
	}
	return values
}

// spin mixes x for rounds xorshift steps, standing in for per-element work.
func spin(x uint64, rounds int) uint64 {
	if x == 0 {
		x = 1
	}
	for range rounds {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	return x
}

var xorMonoid = parallel.Monoid[uint64]{
	Identity: 0,
	Op:       func(a, b uint64) uint64 { return a ^ b },
}

func newOperation(name string, work int) (operation, error) {
	lift := func(v uint64) uint64 { return spin(v, work) }

	switch name {
	case "mapreduce":
		return func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error) {
			return parallel.MapReduce(ctx, p, threads, lift, xorMonoid, values)
		}, nil
	case "reduce":
		// The operator must stay associative, so reduce ignores work and
		// measures a memory-bound fold.
		return func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error) {
			return parallel.Reduce(ctx, p, threads, xorMonoid, values)
		}, nil
	case "maximum":
		byWork := func(a, b uint64) int { return cmp.Compare(spin(a, work), spin(b, work)) }
		return func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error) {
			return parallel.Maximum(ctx, p, threads, byWork, values)
		}, nil
	case "count":
		pred := func(v uint64) bool { return spin(v, work)%2 == 0 }
		return func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error) {
			n, err := parallel.Count(ctx, p, threads, pred, values)
			return uint64(n), err
		}, nil
	case "map":
		return func(ctx context.Context, p *parallel.Parallelism, threads int, values []uint64) (uint64, error) {
			out, err := parallel.Map(ctx, p, threads, lift, values)
			if err != nil {
				return 0, err
			}
			return xorMonoid.Fold(out), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", name)
	}
}
