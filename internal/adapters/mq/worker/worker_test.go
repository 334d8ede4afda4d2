package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/mq/queue"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

type recordingPersister struct {
	mu      sync.Mutex
	calls   [][]reconcile.Assignment
	failErr error
}

func (p *recordingPersister) UpdatePositions(_ context.Context, assignments []reconcile.Assignment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	p.calls = append(p.calls, assignments)
	return nil
}

func (p *recordingPersister) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met within timeout")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWriteback_PersistsBatches(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(8))
	p := &recordingPersister{}
	w := NewWriteback(q, p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	b := queue.Batch{Assignments: []reconcile.Assignment{
		{ID: "a", Pos: ring.Coordinate{Layer: 0, Slot: 1}},
	}}
	if !q.Enqueue(ctx, b) {
		t.Fatal("expected enqueue to succeed")
	}

	waitFor(t, func() bool { return p.callCount() == 1 })

	p.mu.Lock()
	got := p.calls[0]
	p.mu.Unlock()
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected assignment a, got %+v", got)
	}
}

func TestWriteback_FailureDoesNotStopWorker(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(8))
	p := &recordingPersister{failErr: errors.New("store down")}
	w := NewWriteback(q, p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	b := queue.Batch{Assignments: []reconcile.Assignment{
		{ID: "a", Pos: ring.Coordinate{Layer: 0, Slot: 0}},
	}}
	if !q.Enqueue(ctx, b) {
		t.Fatal("expected enqueue to succeed")
	}

	// Recover the persister; the worker must still be draining.
	time.Sleep(20 * time.Millisecond)
	p.mu.Lock()
	p.failErr = nil
	p.mu.Unlock()

	if !q.Enqueue(ctx, b) {
		t.Fatal("expected enqueue to succeed")
	}
	waitFor(t, func() bool { return p.callCount() == 1 })
}

func TestPool_StopAfterQueueClose(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(8))
	p := &recordingPersister{}
	pool := NewPool(2, q, p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	b := queue.Batch{Assignments: []reconcile.Assignment{
		{ID: "a", Pos: ring.Coordinate{Layer: 1, Slot: 3}},
	}}
	if !q.Enqueue(ctx, b) {
		t.Fatal("expected enqueue to succeed")
	}
	waitFor(t, func() bool { return p.callCount() == 1 })

	_ = q.Close()
	pool.Stop()
}
