package pool

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/utkarsh5026/shardpool/internal/latch"
)

// queuedTask is one task of a batch waiting for a worker.
type queuedTask struct {
	ctx     context.Context
	run     Task
	slot    *error
	counter *latch.Counter
	batch   uuid.UUID
	index   int
}

// compactThreshold is the number of consumed slots after which the queue
// shifts its live items to the front of the backing slice.
const compactThreshold = 1024

// taskQueue is an unbounded FIFO queue. It is not safe for concurrent use;
// the pool guards it with its mutex.
type taskQueue struct {
	items []*queuedTask
	head  int
}

func (q *taskQueue) push(t *queuedTask) {
	q.items = append(q.items, t)
}

// pop removes the oldest task. It must not be called on an empty queue.
func (q *taskQueue) pop() *queuedTask {
	t := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return t
}

// unpop puts t back at the head of the queue, ahead of every queued task.
func (q *taskQueue) unpop(t *queuedTask) {
	if q.head > 0 {
		q.head--
		q.items[q.head] = t
		return
	}
	q.items = slices.Insert(q.items, 0, t)
}

func (q *taskQueue) len() int {
	return len(q.items) - q.head
}
