package pool

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/utkarsh5026/shardpool/internal/cpu"
)

// worker is the loop run by every pool goroutine: take the oldest task,
// execute it, repeat until the pool is closed.
func (p *WorkerPool) worker(workerID int) {
	if p.affinity {
		release, err := cpu.Pin(workerID)
		defer release()
		if err != nil {
			p.logger.Warn("cpu pinning failed", zap.Int("worker", workerID), zap.Error(err))
		}
	}

	for {
		t, ok := p.next()
		if !ok {
			return
		}

		if p.rateLimiter != nil {
			// Only fails once Close has canceled the pool context.
			if err := p.rateLimiter.Wait(p.ctx); err != nil {
				p.requeue(t)
				return
			}
		}

		p.execute(workerID, t)
	}
}

// next blocks until a task is queued or the pool is stopped. The stop flag is
// checked before the queue, so a closed pool never starts another task.
func (p *WorkerPool) next() (*queuedTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.stopped && p.queue.len() == 0 {
		p.cond.Wait()
	}
	if p.stopped {
		return nil, false
	}

	t := p.queue.pop()
	p.metrics.Dequeued()
	return t, true
}

// requeue returns a task the worker took but will not run to the head of the
// queue, so it stays visible to Pending like every other abandoned task.
func (p *WorkerPool) requeue(t *queuedTask) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue.unpop(t)
	p.metrics.Requeued()
}

// execute runs one task, stores its outcome in the task's slot and signals the
// batch counter. The slot is written before the counter is signaled.
func (p *WorkerPool) execute(workerID int, t *queuedTask) {
	err := processWithRecovery(t)

	panicked := errors.Is(err, ErrTaskPanic)
	if panicked {
		p.logger.Error("task panicked",
			zap.String("batch", t.batch.String()),
			zap.Int("task", t.index),
			zap.Int("worker", workerID),
			zap.Error(err),
		)
	}

	*t.slot = err
	p.metrics.Completed(panicked)
	t.counter.Done()
}

// processWithRecovery executes a task with panic recovery.
// If a panic occurs, it's converted to an error to prevent crashing the worker.
func processWithRecovery(t *queuedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrTaskPanic, r, buf[:n])
		}
	}()

	return t.run(t.ctx)
}
