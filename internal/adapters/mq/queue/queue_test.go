package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/gazeboard/internal/domain/model"
)

func frame(seq uint64) model.Frame {
	return model.Frame{Seq: seq, Width: 640, Height: 480, Landmarks: []model.Point{{X: 1, Y: 2}}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if _, _, ok := q.Latest(ctx); ok {
		t.Error("expected no frame from empty queue")
	}

	if !q.Enqueue(ctx, frame(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	f, superseded, ok := q.Latest(ctx)
	if !ok || f.Seq != 1 || superseded != 0 {
		t.Errorf("Latest() = seq %d, superseded %d, ok %v", f.Seq, superseded, ok)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame(1)) || !q.Enqueue(ctx, frame(2)) {
		t.Fatal("expected enqueue to succeed")
	}
	// Try to enqueue when full
	if q.Enqueue(ctx, frame(3)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_LatestWins(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()
	for seq := uint64(1); seq <= 5; seq++ {
		q.Enqueue(ctx, frame(seq))
	}

	f, superseded, ok := q.Latest(ctx)
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Seq != 5 {
		t.Errorf("expected newest frame 5, got %d", f.Seq)
	}
	if superseded != 4 {
		t.Errorf("expected 4 superseded frames, got %d", superseded)
	}
	if _, _, ok := q.Latest(ctx); ok {
		t.Error("expected queue to be drained")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if q.Enqueue(ctx, frame(1)) {
		t.Error("expected enqueue with cancelled context to fail")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	numGoroutines := 10
	numFrames := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numFrames; j++ {
				q.Enqueue(ctx, frame(uint64(id*numFrames+j+1)))
			}
		}(i)
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			if _, n, ok := q.Latest(ctx); ok {
				total += n + 1
			}
			if total != numGoroutines*numFrames {
				t.Errorf("expected %d frames, got %d", numGoroutines*numFrames, total)
			}
			return
		default:
			if _, n, ok := q.Latest(ctx); ok {
				total += n + 1
			}
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame(1)) || !q.Enqueue(ctx, frame(2)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, frame(3)) {
		t.Error("expected enqueue to fail after closing")
	}

	// Pending frames survive the close.
	f, _, ok := q.Latest(ctx)
	if !ok || f.Seq != 2 {
		t.Errorf("expected pending frame 2 after close, got %d (ok=%v)", f.Seq, ok)
	}
	if _, _, ok := q.Latest(ctx); ok {
		t.Error("expected closed, drained queue to yield nothing")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
