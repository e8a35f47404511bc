package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/pkg/metrics"
)

const defaultCapacity = 256

// HistoryStore is an in-memory ring of the most recent selection events.
type HistoryStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []model.SelectionEvent
	head     int // next write position
	size     int
	byID     map[string]int // id -> ring index
}

var _ Store = (*HistoryStore)(nil)

// NewHistoryStore constructs an empty history store.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]model.SelectionEvent, s.capacity)
	s.byID = make(map[string]int, s.capacity)
	return s
}

// Add implements Store.Add in O(1).
func (s *HistoryStore) Add(_ context.Context, ev model.SelectionEvent) error {
	if ev.ID == "" {
		metrics.RecordErrorByComponent("repository", "missing_id")
		return ErrMissingID
	}
	ev.Columns = append([]int(nil), ev.Columns...)
	ev.Grid = ev.Grid.Clone()

	s.mu.Lock()
	if s.size == s.capacity {
		evicted := s.ring[s.head]
		if s.byID[evicted.ID] == s.head {
			delete(s.byID, evicted.ID)
		}
		metrics.RecordHistoryEvicted()
	} else {
		s.size++
	}
	s.ring[s.head] = ev
	s.byID[ev.ID] = s.head
	s.head = (s.head + 1) % s.capacity
	size := s.size
	s.mu.Unlock()

	metrics.UpdateHistoryRecords(size)
	return nil
}

// Get implements Store.Get.
func (s *HistoryStore) Get(_ context.Context, id string) (model.SelectionEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordHistoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.SelectionEvent{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return copyEvent(s.ring[idx]), nil
}

// Recent implements Store.Recent.
func (s *HistoryStore) Recent(_ context.Context, n int) ([]model.SelectionEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordHistoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("%d: %w", n, ErrInvalidLimit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.size {
		n = s.size
	}
	out := make([]model.SelectionEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.head - i + s.capacity) % s.capacity
		out = append(out, copyEvent(s.ring[idx]))
	}
	return out, nil
}

// Count implements Store.Count.
func (s *HistoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func copyEvent(ev model.SelectionEvent) model.SelectionEvent {
	ev.Columns = append([]int(nil), ev.Columns...)
	ev.Grid = ev.Grid.Clone()
	return ev
}
