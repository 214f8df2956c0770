package pool

import "errors"

var (
	// ErrInvalidArgument reports a malformed request, such as a worker count below one.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCanceled reports that the caller stopped waiting for a batch because
	// its context ended. Errors carrying it also wrap the context's error.
	ErrCanceled = errors.New("canceled while awaiting batch")

	// ErrPoolClosed reports a submission to a pool that has been closed.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrTaskPanic reports a task whose function panicked.
	ErrTaskPanic = errors.New("worker panic")
)
