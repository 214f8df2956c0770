package parallel

import (
	"context"
	"fmt"
	"strings"
)

func nilFunc(name string) error {
	return fmt.Errorf("%w: nil %s", ErrInvalidArgument, name)
}

// concat joins shard slices in order into one new slice.
func concat[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Map returns f applied to every element, in input order.
func Map[T, U any](ctx context.Context, p *Parallelism, threads int, f func(T) U, values []T) ([]U, error) {
	if f == nil {
		return nil, nilFunc("map function")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) ([]U, error) {
			out := make([]U, len(shard))
			for i, v := range shard {
				out[i] = f(v)
			}
			return out, nil
		},
		concat[U],
	)
}

// Filter returns the elements satisfying pred, in input order.
func Filter[T any](ctx context.Context, p *Parallelism, threads int, pred func(T) bool, values []T) ([]T, error) {
	if pred == nil {
		return nil, nilFunc("predicate")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) ([]T, error) {
			var out []T
			for _, v := range shard {
				if pred(v) {
					out = append(out, v)
				}
			}
			return out, nil
		},
		concat[T],
	)
}

// Join concatenates the default string form (fmt.Sprint) of every element.
func Join[T any](ctx context.Context, p *Parallelism, threads int, values []T) (string, error) {
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (string, error) {
			var sb strings.Builder
			for _, v := range shard {
				sb.WriteString(fmt.Sprint(v))
			}
			return sb.String(), nil
		},
		func(parts []string) string {
			return strings.Join(parts, "")
		},
	)
}

// Count returns the number of elements satisfying pred.
func Count[T any](ctx context.Context, p *Parallelism, threads int, pred func(T) bool, values []T) (int, error) {
	if pred == nil {
		return 0, nilFunc("predicate")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (int, error) {
			n := 0
			for _, v := range shard {
				if pred(v) {
					n++
				}
			}
			return n, nil
		},
		func(counts []int) int {
			total := 0
			for _, c := range counts {
				total += c
			}
			return total
		},
	)
}

// All reports whether every element satisfies pred. It is true for an empty input.
func All[T any](ctx context.Context, p *Parallelism, threads int, pred func(T) bool, values []T) (bool, error) {
	if pred == nil {
		return false, nilFunc("predicate")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (bool, error) {
			for _, v := range shard {
				if !pred(v) {
					return false, nil
				}
			}
			return true, nil
		},
		func(parts []bool) bool {
			for _, ok := range parts {
				if !ok {
					return false
				}
			}
			return true
		},
	)
}

// Any reports whether some element satisfies pred. It is false for an empty input.
func Any[T any](ctx context.Context, p *Parallelism, threads int, pred func(T) bool, values []T) (bool, error) {
	if pred == nil {
		return false, nilFunc("predicate")
	}
	all, err := All(ctx, p, threads, func(v T) bool { return !pred(v) }, values)
	if err != nil {
		return false, err
	}
	return !all, nil
}

// maxBy returns the greatest element by cmp, keeping the earliest on ties.
func maxBy[T any](values []T, cmp func(a, b T) int) T {
	best := values[0]
	for _, v := range values[1:] {
		if cmp(best, v) < 0 {
			best = v
		}
	}
	return best
}

// Maximum returns the greatest element according to cmp, which reports
// a negative, zero or positive value like cmp.Compare. Among equal maxima
// the earliest element wins. An empty input fails with ErrEmptyInput.
func Maximum[T any](ctx context.Context, p *Parallelism, threads int, cmp func(a, b T) int, values []T) (T, error) {
	if cmp == nil {
		var zero T
		return zero, nilFunc("comparator")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (T, error) {
			if len(shard) == 0 {
				var zero T
				return zero, ErrEmptyInput
			}
			return maxBy(shard, cmp), nil
		},
		func(maxima []T) T {
			return maxBy(maxima, cmp)
		},
	)
}

// Minimum returns the least element according to cmp. It is Maximum with
// the comparator reversed.
func Minimum[T any](ctx context.Context, p *Parallelism, threads int, cmp func(a, b T) int, values []T) (T, error) {
	if cmp == nil {
		var zero T
		return zero, nilFunc("comparator")
	}
	return Maximum(ctx, p, threads, func(a, b T) int { return cmp(b, a) }, values)
}

// Reduce folds values with m: every shard is folded from the identity, then
// the shard results are folded again with the same operator. For an
// associative m this equals m.Fold(values).
func Reduce[T any](ctx context.Context, p *Parallelism, threads int, m Monoid[T], values []T) (T, error) {
	if m.Op == nil {
		var zero T
		return zero, nilFunc("monoid operator")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (T, error) {
			return m.Fold(shard), nil
		},
		m.Fold,
	)
}

// MapReduce lifts every element with lift and folds the lifted values with m
// as Reduce does.
func MapReduce[T, R any](ctx context.Context, p *Parallelism, threads int, lift func(T) R, m Monoid[R], values []T) (R, error) {
	if lift == nil || m.Op == nil {
		var zero R
		return zero, nilFunc("lift function or monoid operator")
	}
	return Do(ctx, p, threads, values,
		func(_ context.Context, shard []T) (R, error) {
			acc := m.Identity
			for _, v := range shard {
				acc = m.Op(acc, lift(v))
			}
			return acc, nil
		},
		m.Fold,
	)
}
