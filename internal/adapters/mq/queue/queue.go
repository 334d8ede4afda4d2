// Package queue buffers reconciliation write-back batches. Persisting
// reconciled coordinates is fire-and-forget relative to the read response;
// the queue decouples the two so a slow store never delays a listing.
package queue

import (
	"context"
	"sync"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/pkg/metrics"
)

// defaultCapacity bounds the in-memory queue.
const defaultCapacity = 1024

// Batch is one reconciliation pass worth of coordinate assignments.
type Batch struct {
	Assignments []reconcile.Assignment
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a batch. Returns false when the queue is full or
	// closed; callers log and rely on the next reconciliation pass to
	// retry the write-back.
	Enqueue(ctx context.Context, b Batch) bool

	// Dequeue returns a channel receiving batches until the queue closes.
	Dequeue(ctx context.Context) <-chan Batch

	// Len returns the current number of queued batches.
	Len(ctx context.Context) int

	// Close shuts the queue down; no new batches are accepted.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	batches  chan Batch
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.batches = make(chan Batch, q.capacity)

	metrics.UpdateWritebackQueueCapacity(q.capacity)
	metrics.UpdateWritebackQueueSize(0)
	return q
}

// Enqueue adds a batch without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, b Batch) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordWritebackEnqueueError()
		return false
	}

	select {
	case q.batches <- b:
		metrics.UpdateWritebackQueueSize(len(q.batches))
		return true
	case <-ctx.Done():
		metrics.RecordWritebackEnqueueError()
		return false
	default:
		metrics.RecordWritebackEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that receives batches as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Batch {
	out := make(chan Batch)
	go func() {
		defer close(out)
		for b := range q.batches {
			select {
			case out <- b:
				metrics.UpdateWritebackQueueSize(len(q.batches))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued batches.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.batches)
}

// IsClosed reports whether the queue has been shut down.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.batches)
	q.closed = true
	return nil
}
