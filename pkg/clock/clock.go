// Package clock abstracts wall-clock reads and one-shot scheduling so that
// time-locked state can be driven by a manual clock in tests.
package clock

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Sentinel kinds for scheduling errors.
var (
	ErrNegativeDelay = errors.New("negative delay")
	ErrNilFunc       = errors.New("nil timer func")
)

// Timer is a cancellable handle to a scheduled one-shot func.
type Timer interface {
	// Stop prevents the func from firing. Returns false if it already
	// fired or was stopped before.
	Stop() bool
}

// Clock reads the current time and schedules one-shot funcs.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (Timer, error)
}

func validate(d time.Duration, f func()) error {
	if f == nil {
		return ErrNilFunc
	}
	if d < 0 {
		return fmt.Errorf("schedule in %s: %w", d, ErrNegativeDelay)
	}
	return nil
}

// Real is a Clock backed by package time.
type Real struct{}

// NewReal returns the wall clock.
func NewReal() Real { return Real{} }

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// AfterFunc schedules f on its own goroutine after d.
func (Real) AfterFunc(d time.Duration, f func()) (Timer, error) {
	if err := validate(d, f); err != nil {
		return nil, err
	}
	return time.AfterFunc(d, f), nil
}

// Manual is a Clock whose time only moves when Advance is called. Due
// timers fire synchronously on the goroutine calling Advance, in deadline
// order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers map[uint64]*manualTimer
}

type manualTimer struct {
	clock    *Manual
	id       uint64
	deadline time.Time
	fn       func()
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:    start,
		timers: make(map[uint64]*manualTimer),
	}
}

// Now returns the manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers f to fire once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) (Timer, error) {
	if err := validate(d, f); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{clock: m, id: m.seq, deadline: m.now.Add(d), fn: f}
	m.timers[t.id] = t
	return t, nil
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is at or before the new time.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	var due []*manualTimer
	for id, t := range m.timers {
		if !t.deadline.After(now) {
			due = append(due, t)
			delete(m.timers, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}
