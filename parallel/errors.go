package parallel

import (
	"errors"

	"github.com/utkarsh5026/shardpool/pool"
)

var (
	// ErrInvalidArgument reports a thread count below one or a nil function.
	ErrInvalidArgument = pool.ErrInvalidArgument

	// ErrCanceled reports that the caller's context ended before all shards were joined.
	ErrCanceled = pool.ErrCanceled

	// ErrTaskPanic reports a shard function that panicked.
	ErrTaskPanic = pool.ErrTaskPanic

	// ErrEmptyInput reports an operation without a neutral value, such as
	// Maximum, applied to an empty sequence.
	ErrEmptyInput = errors.New("empty input")
)
