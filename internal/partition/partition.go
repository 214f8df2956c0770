// Package partition splits an index range into contiguous, near-equal shards.
package partition

import "fmt"

// Shard is a half-open index range [Start, End) over an input sequence.
type Shard struct {
	Start int
	End   int
}

// Len returns the number of elements covered by the shard.
func (s Shard) Len() int {
	return s.End - s.Start
}

// Count returns the effective number of shards used for n elements when k
// shards are requested: max(1, min(n, k)).
func Count(n, k int) int {
	return max(1, min(n, k))
}

// Split divides n elements into Count(n, k) contiguous shards and returns the
// Count(n, k)+1 boundary offsets, ascending from 0 to n.
//
// The first n%shards shards receive one extra element, so shard sizes differ
// by at most one. Split panics if n is negative.
func Split(n, k int) []int {
	if n < 0 {
		panic(fmt.Sprintf("partition: negative length %d", n))
	}

	shards := Count(n, k)
	base := n / shards
	rem := n % shards

	bounds := make([]int, shards+1)
	for i := range shards {
		size := base
		if i < rem {
			size++
		}
		bounds[i+1] = bounds[i] + size
	}
	return bounds
}

// Shards is Split expressed as ranges.
func Shards(n, k int) []Shard {
	bounds := Split(n, k)
	shards := make([]Shard, len(bounds)-1)
	for i := range shards {
		shards[i] = Shard{Start: bounds[i], End: bounds[i+1]}
	}
	return shards
}
