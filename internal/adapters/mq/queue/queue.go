// Package queue buffers landmark frames between the detector and the
// polling pipeline.
//
// The queue is bounded and never blocks producers. The consumer samples it
// once per tick and keeps only the newest frame.
package queue

import (
	"context"
	"sync"

	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Frame is the payload type flowing through the queue.
type Frame = model.Frame

// Queue provides non-blocking enqueue and per-tick sampling.
type Queue interface {
	// Enqueue adds a frame to the queue.
	// Returns false if the queue is full or closed and the frame was dropped.
	Enqueue(ctx context.Context, f Frame) bool

	// Latest drains every pending frame and returns the newest one, along
	// with how many older frames it superseded. ok is false when nothing
	// was pending.
	Latest(ctx context.Context) (f Frame, superseded int, ok bool)

	// Len returns the current number of queued frames.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	frames   chan Frame
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.frames = make(chan Frame, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Capacity returns the maximum number of pending frames.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds a frame to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, f Frame) bool { //nolint:gocritic // hugeParam: Frame must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordFrameDropped("closed")
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordFrameDropped("context_cancelled")
		return false
	default:
	}

	select {
	case q.frames <- f:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	default:
		metrics.RecordFrameDropped("queue_full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Latest drains the queue and returns the newest frame.
func (q *InMemoryQueue) Latest(ctx context.Context) (Frame, int, bool) {
	var (
		latest Frame
		n      int
	)
	defer q.updateGauges()
	for {
		select {
		case <-ctx.Done():
			return q.result(latest, n)
		case f, open := <-q.frames:
			if !open {
				return q.result(latest, n)
			}
			metrics.RecordQueueDequeue()
			latest = f
			n++
		default:
			return q.result(latest, n)
		}
	}
}

func (q *InMemoryQueue) result(latest Frame, n int) (Frame, int, bool) {
	if n == 0 {
		return Frame{}, 0, false
	}
	if n > 1 {
		metrics.RecordQueueSuperseded(n - 1)
	}
	return latest, n - 1, true
}

// Len returns the current number of queued frames.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.updateGauges()
	return len(q.frames)
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.frames)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close gracefully shuts down the queue. Frames still pending can be read
// with Latest.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.frames)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
