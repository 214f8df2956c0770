// Package metrics exposes worker pool activity as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shardpool"

// Pool records task and batch activity for a single worker pool.
// A nil *Pool is valid and records nothing.
type Pool struct {
	TasksSubmitted  prometheus.Counter
	TasksCompleted  prometheus.Counter
	TaskPanics      prometheus.Counter
	QueueDepth      prometheus.Gauge
	BatchesInFlight prometheus.Gauge
}

// ErrNoRegisterer is returned by NewPool when no registerer is given.
var ErrNoRegisterer = errors.New("metrics: nil registerer")

// NewPool creates the pool collectors labelled with poolName and registers
// them on reg. If collectors with the same pool name are already registered,
// the existing ones are returned instead, so pools sharing a name also share
// their counters and gauges.
func NewPool(reg prometheus.Registerer, poolName string) (*Pool, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w for pool %q", ErrNoRegisterer, poolName)
	}
	labels := prometheus.Labels{"pool": poolName}

	p := &Pool{
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_submitted_total",
			Help:        "Tasks enqueued on the worker pool.",
			ConstLabels: labels,
		}),
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_completed_total",
			Help:        "Tasks executed to completion by pool workers.",
			ConstLabels: labels,
		}),
		TaskPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "task_panics_total",
			Help:        "Tasks whose function panicked.",
			ConstLabels: labels,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "queue_depth",
			Help:        "Tasks waiting in the pool queue.",
			ConstLabels: labels,
		}),
		BatchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "batches_in_flight",
			Help:        "Batches with tasks not yet executed.",
			ConstLabels: labels,
		}),
	}

	var err error
	p.TasksSubmitted, err = register(reg, p.TasksSubmitted)
	if err != nil {
		return nil, err
	}
	p.TasksCompleted, err = register(reg, p.TasksCompleted)
	if err != nil {
		return nil, err
	}
	p.TaskPanics, err = register(reg, p.TaskPanics)
	if err != nil {
		return nil, err
	}
	p.QueueDepth, err = register(reg, p.QueueDepth)
	if err != nil {
		return nil, err
	}
	p.BatchesInFlight, err = register(reg, p.BatchesInFlight)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Submitted records n tasks entering the queue.
func (p *Pool) Submitted(n int) {
	if p == nil {
		return
	}
	p.TasksSubmitted.Add(float64(n))
	p.QueueDepth.Add(float64(n))
}

// Requeued records a task put back at the head of the queue.
func (p *Pool) Requeued() {
	if p == nil {
		return
	}
	p.QueueDepth.Inc()
}

// Dequeued records a task leaving the queue for a worker.
func (p *Pool) Dequeued() {
	if p == nil {
		return
	}
	p.QueueDepth.Dec()
}

// Completed records a task finishing; panicked marks a recovered panic.
func (p *Pool) Completed(panicked bool) {
	if p == nil {
		return
	}
	p.TasksCompleted.Inc()
	if panicked {
		p.TaskPanics.Inc()
	}
}

// BatchStarted records a batch entering the pool.
func (p *Pool) BatchStarted() {
	if p == nil {
		return
	}
	p.BatchesInFlight.Inc()
}

// BatchFinished records the last task of a batch completing.
func (p *Pool) BatchFinished() {
	if p == nil {
		return
	}
	p.BatchesInFlight.Dec()
}
