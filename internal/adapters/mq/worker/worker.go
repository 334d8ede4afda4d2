// Package worker drains the write-back queue, persisting reconciled
// coordinates to the record store. Persistence failures are logged and
// counted only; the next reconciliation pass regenerates the batch.
package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/mq/queue"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
	"github.com/Qwealzy/roots-of-sentient/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	persistTimeout        = 10 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Persister applies a batch of coordinate assignments to the store.
type Persister interface {
	UpdatePositions(ctx context.Context, assignments []reconcile.Assignment) error
}

// Queue defines how workers receive batches.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Batch
}

// Writeback processes one stream of batches.
type Writeback struct {
	queue     Queue
	persister Persister
	name      string

	done chan struct{}

	logger logger.Logger
}

// NewWriteback creates a single write-back worker.
func NewWriteback(q Queue, persister Persister, opts ...Option) *Writeback {
	w := &Writeback{
		queue:     q,
		persister: persister,
		name:      "writeback",
		done:      make(chan struct{}),
		logger:    logger.Get().Named("writeback"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the queue until ctx is canceled or the queue closes.
func (w *Writeback) Run(ctx context.Context) {
	defer close(w.done)

	batches := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-batches:
			if !ok {
				return
			}
			w.persist(ctx, b)
		}
	}
}

// persist applies one batch with a bounded timeout. Errors never propagate:
// the in-memory assignment already served the response, and the next read
// will retry persistence.
func (w *Writeback) persist(ctx context.Context, b queue.Batch) {
	if len(b.Assignments) == 0 {
		return
	}
	start := time.Now()
	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	err := w.persister.UpdatePositions(persistCtx, b.Assignments)
	metrics.RecordWritebackLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordWritebackFailure()
		w.logger.Error(ctx, "coordinate write-back failed",
			logger.Int("assignments", len(b.Assignments)),
			logger.Error(err),
		)
		return
	}
	metrics.RecordWritebackBatch()
}

// Pool manages a set of write-back workers.
type Pool struct {
	workers []*Writeback
	logger  logger.Logger
}

// NewPool creates a pool of count workers sharing one queue.
func NewPool(count int, q Queue, persister Persister) *Pool {
	if count < 1 {
		count = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*Writeback, count),
		logger:  logger.Get().Named("writeback-pool"),
	}
	for i := 0; i < count; i++ {
		p.workers[i] = NewWriteback(q, persister, WithName("writeback-"+strconv.Itoa(i)))
	}
	metrics.UpdateWritebackWorkerCount(count)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop waits for workers to drain; the queue must be closed first.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
