package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/pkg/clock"
	"github.com/okian/gazeboard/pkg/logger"
)

// LockDuration is how long a selection blocks further selections.
const LockDuration = 30 * time.Second

// State of the machine.
type State int

const (
	Idle State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "idle"
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Unlock describes a lock that expired.
type Unlock struct {
	EventID   string          `json:"event_id"`
	Direction model.Direction `json:"direction"`
	Category  string          `json:"category"`
	// Grid is the full grid shown once the lock is gone.
	Grid model.Grid `json:"grid"`
	At   time.Time  `json:"at"`
}

// Snapshot is a point-in-time copy of the machine state.
type Snapshot struct {
	State    State                 `json:"state"`
	Category string                `json:"category"`
	Event    *model.SelectionEvent `json:"event,omitempty"`
	UnlockAt time.Time             `json:"unlock_at,omitzero"`
	Visible  model.Grid            `json:"visible"`
}

// lock is the single active selection lock. gen ties a timer to the lock
// that armed it.
type lock struct {
	gen   uint64
	event model.SelectionEvent
	timer clock.Timer
}

// Machine is the Idle/Locked selection state machine. All methods are safe
// for concurrent use; state changes are serialized by a mutex.
type Machine struct {
	mu       sync.Mutex
	clock    clock.Clock
	logger   logger.Logger
	newID    func() string
	category string
	grid     model.Grid
	active   *lock
	gen      uint64
	closed   bool
	onUnlock []func(Unlock)
}

// New returns an Idle machine showing grid under category.
func New(category string, grid model.Grid, opts ...Option) (*Machine, error) {
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	m := &Machine{
		clock:    clock.NewReal(),
		logger:   logger.Get().Named("selection"),
		newID:    uuid.NewString,
		category: category,
		grid:     grid.Clone(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ValidateGrid checks that every row has exactly model.GridColumns cells.
func ValidateGrid(grid model.Grid) error {
	for i, row := range grid {
		if len(row) != model.GridColumns {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), model.GridColumns, ErrInvalidGrid)
		}
	}
	return nil
}

// OnUnlock registers fn to run after a lock expires. Hooks run outside the
// machine's lock, on the timer's goroutine.
func (m *Machine) OnUnlock(fn func(Unlock)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onUnlock = append(m.onUnlock, fn)
	m.mu.Unlock()
}

// Trigger feeds one classified status into the machine. It returns the
// emitted event, or nil when the status is not a blink or a lock is
// active.
func (m *Machine) Trigger(ctx context.Context, status model.EyeStatus) (*model.SelectionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if !status.Blinking {
		return nil, nil
	}
	if m.active != nil {
		m.logger.Debug(ctx, "trigger ignored while locked",
			logger.String("direction", status.Direction.String()),
			logger.String("lock_event", m.active.event.ID),
		)
		return nil, nil
	}

	cols := Columns(status.Direction)
	if cols == nil {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownDirection, int(status.Direction))
	}
	reduced, err := m.grid.SelectColumns(cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}

	now := m.clock.Now()
	gen := m.gen + 1
	timer, err := m.clock.AfterFunc(LockDuration, func() { m.expire(gen) })
	if err != nil {
		m.logger.Error(ctx, "unlock scheduling failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrScheduleUnlock, err)
	}
	m.gen = gen

	event := model.SelectionEvent{
		ID:        m.newID(),
		Direction: status.Direction,
		Columns:   cols,
		Grid:      reduced,
		Category:  m.category,
		At:        now,
		UnlockAt:  now.Add(LockDuration),
	}
	m.active = &lock{gen: gen, event: event, timer: timer}

	m.logger.Info(ctx, "selection emitted",
		logger.String("id", event.ID),
		logger.String("direction", event.Direction.String()),
		logger.Any("columns", cols),
		logger.String("category", event.Category),
	)

	out := copyEvent(event)
	return &out, nil
}

// expire returns the machine to Idle if gen still names the active lock.
func (m *Machine) expire(gen uint64) {
	m.mu.Lock()
	if m.closed || m.active == nil || m.active.gen != gen {
		m.mu.Unlock()
		return
	}
	ev := m.active.event
	m.active = nil
	hooks := append([]func(Unlock){}, m.onUnlock...)
	u := Unlock{
		EventID:   ev.ID,
		Direction: ev.Direction,
		Category:  m.category,
		Grid:      m.grid.Clone(),
		At:        m.clock.Now(),
	}
	m.mu.Unlock()

	m.logger.Info(context.Background(), "selection unlocked", logger.String("id", ev.ID))
	for _, fn := range hooks {
		fn(u)
	}
}

// SetGrid replaces the base grid shown while Idle. An active lock keeps the
// reduced grid it was created with.
func (m *Machine) SetGrid(category string, grid model.Grid) error {
	if err := ValidateGrid(grid); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.category = category
	m.grid = grid.Clone()
	return nil
}

// Visible returns the grid the user should see now: the reduced grid while
// Locked, the full grid while Idle.
func (m *Machine) Visible() model.Grid {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return m.active.event.Grid.Clone()
	}
	return m.grid.Clone()
}

// Locked reports whether a selection lock is active.
func (m *Machine) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// Category returns the active category name.
func (m *Machine) Category() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.category
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{State: Idle, Category: m.category}
	if m.active != nil {
		ev := copyEvent(m.active.event)
		s.State = Locked
		s.Event = &ev
		s.UnlockAt = ev.UnlockAt
		s.Visible = ev.Grid.Clone()
		return s
	}
	s.Visible = m.grid.Clone()
	return s
}

// Close cancels a pending unlock and rejects further triggers. A timer that
// fires after Close does nothing.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.active != nil {
		m.active.timer.Stop()
		m.active = nil
	}
}

func copyEvent(ev model.SelectionEvent) model.SelectionEvent {
	ev.Columns = append([]int(nil), ev.Columns...)
	ev.Grid = ev.Grid.Clone()
	return ev
}
