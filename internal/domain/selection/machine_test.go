package selection_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/internal/domain/selection"
	"github.com/okian/gazeboard/pkg/clock"
	"github.com/okian/gazeboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// numberedGrid returns rows whose cells are "r<row>c<col>".
func numberedGrid(rows int) model.Grid {
	g := make(model.Grid, rows)
	for r := range g {
		g[r] = make([]string, model.GridColumns)
		for c := range g[r] {
			g[r][c] = fmt.Sprintf("r%dc%d", r, c)
		}
	}
	return g
}

type failingClock struct{ clock.Clock }

func (failingClock) AfterFunc(time.Duration, func()) (clock.Timer, error) {
	return nil, errors.New("timer wheel exhausted")
}

func blink(d model.Direction) model.EyeStatus { return model.EyeStatus{Direction: d, Blinking: true} }

func newMachine(clk clock.Clock) *selection.Machine {
	n := 0
	m, err := selection.New("Home", numberedGrid(6),
		selection.WithClock(clk),
		selection.WithIDGenerator(func() string { n++; return fmt.Sprintf("sel-%d", n) }),
	)
	So(err, ShouldBeNil)
	return m
}

func TestMachine(t *testing.T) {
	Convey("Given an idle machine on a manual clock", t, func() {
		ctx := context.Background()
		clk := clock.NewManual(epoch)
		m := newMachine(clk)
		full := numberedGrid(6)

		So(m.Locked(), ShouldBeFalse)
		So(m.Visible(), ShouldResemble, full)

		Convey("When the eyes are open", func() {
			ev, err := m.Trigger(ctx, model.EyeStatus{Direction: model.Right})

			Convey("Then nothing is emitted", func() {
				So(err, ShouldBeNil)
				So(ev, ShouldBeNil)
				So(m.Locked(), ShouldBeFalse)
				So(clk.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When the user blinks looking right", func() {
			ev, err := m.Trigger(ctx, blink(model.Right))

			Convey("Then a selection of columns 0-2 is emitted and the machine locks", func() {
				So(err, ShouldBeNil)
				So(ev, ShouldNotBeNil)
				So(ev.ID, ShouldEqual, "sel-1")
				So(ev.Direction, ShouldEqual, model.Right)
				So(ev.Columns, ShouldResemble, []int{0, 1, 2})
				So(ev.Category, ShouldEqual, "Home")
				So(len(ev.Grid), ShouldEqual, 6)
				So(ev.Grid[0], ShouldResemble, []string{"r0c0", "r0c1", "r0c2"})
				So(ev.At.Equal(epoch), ShouldBeTrue)
				So(ev.UnlockAt.Equal(epoch.Add(30*time.Second)), ShouldBeTrue)
				So(m.Locked(), ShouldBeTrue)
				So(m.Visible(), ShouldResemble, ev.Grid)
				So(clk.Pending(), ShouldEqual, 1)
			})

			Convey("And the user blinks looking left right away", func() {
				again, err := m.Trigger(ctx, blink(model.Left))

				Convey("Then the trigger is dropped", func() {
					So(err, ShouldBeNil)
					So(again, ShouldBeNil)
					So(m.Snapshot().Event.ID, ShouldEqual, "sel-1")
				})
			})

			Convey("And blinks keep coming for 29.9 seconds", func() {
				emitted := 0
				for i := 0; i < 299; i++ {
					clk.Advance(100 * time.Millisecond)
					if ev, _ := m.Trigger(ctx, blink(model.Directions[i%3])); ev != nil {
						emitted++
					}
				}

				Convey("Then no further selection is emitted", func() {
					So(emitted, ShouldEqual, 0)
					So(m.Locked(), ShouldBeTrue)
				})
			})

			Convey("And 31 seconds pass", func() {
				var unlocks []selection.Unlock
				m.OnUnlock(func(u selection.Unlock) { unlocks = append(unlocks, u) })
				clk.Advance(31 * time.Second)

				Convey("Then the full grid is back and the unlock hook ran once", func() {
					So(m.Locked(), ShouldBeFalse)
					So(m.Visible(), ShouldResemble, full)
					So(len(unlocks), ShouldEqual, 1)
					So(unlocks[0].EventID, ShouldEqual, "sel-1")
					So(unlocks[0].Direction, ShouldEqual, model.Right)
				})

				Convey("Then a center blink selects columns 3-4 immediately", func() {
					next, err := m.Trigger(ctx, blink(model.Center))
					So(err, ShouldBeNil)
					So(next, ShouldNotBeNil)
					So(next.ID, ShouldEqual, "sel-2")
					So(next.Columns, ShouldResemble, []int{3, 4})
					So(next.Grid[5], ShouldResemble, []string{"r5c3", "r5c4"})
				})
			})

			Convey("And a new lock is taken as soon as the old one expires", func() {
				var got selection.Unlock
				var visible model.Grid
				m.OnUnlock(func(selection.Unlock) {
					_, _ = m.Trigger(ctx, blink(model.Center))
				})
				m.OnUnlock(func(u selection.Unlock) {
					got = u
					visible = m.Visible()
				})
				clk.Advance(31 * time.Second)

				Convey("Then the unlock still carries the full grid", func() {
					So(m.Locked(), ShouldBeTrue)
					So(len(visible[0]), ShouldEqual, 2)
					So(got.Grid, ShouldResemble, full)
					So(got.Category, ShouldEqual, "Home")
				})
			})

			Convey("And the caller mutates the returned event", func() {
				ev.Grid[0][0] = "changed"
				ev.Columns[0] = 7

				Convey("Then the machine state is unaffected", func() {
					snap := m.Snapshot()
					So(snap.Event.Grid[0][0], ShouldEqual, "r0c0")
					So(snap.Event.Columns[0], ShouldEqual, 0)
				})
			})

			Convey("And the grid is replaced while locked", func() {
				other := numberedGrid(2)
				other[0][0] = "new"
				So(m.SetGrid("Food", other), ShouldBeNil)

				Convey("Then the reduced grid stays until the unlock", func() {
					So(m.Visible(), ShouldResemble, ev.Grid)
					clk.Advance(selection.LockDuration)
					So(m.Visible(), ShouldResemble, other)
					So(m.Category(), ShouldEqual, "Food")
				})
			})

			Convey("And the machine is closed before the deadline", func() {
				m.Close()

				Convey("Then the unlock timer is cancelled and triggers fail", func() {
					So(clk.Pending(), ShouldEqual, 0)
					clk.Advance(time.Minute)
					_, err := m.Trigger(ctx, blink(model.Center))
					So(errors.Is(err, selection.ErrClosed), ShouldBeTrue)
					So(errors.Is(m.SetGrid("Home", full), selection.ErrClosed), ShouldBeTrue)
				})
			})
		})

		Convey("When the unlock fires at exactly the deadline", func() {
			_, err := m.Trigger(ctx, blink(model.Left))
			So(err, ShouldBeNil)
			clk.Advance(selection.LockDuration - time.Nanosecond)
			So(m.Locked(), ShouldBeTrue)
			clk.Advance(time.Nanosecond)

			Convey("Then the machine is idle again", func() {
				So(m.Locked(), ShouldBeFalse)
				So(m.Snapshot().State, ShouldEqual, selection.Idle)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			ev, err := m.Trigger(cctx, blink(model.Left))

			Convey("Then the trigger is rejected without locking", func() {
				So(ev, ShouldBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(m.Locked(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a clock that cannot schedule timers", t, func() {
		m := newMachine(failingClock{Clock: clock.NewManual(epoch)})

		Convey("When a blink arrives", func() {
			ev, err := m.Trigger(context.Background(), blink(model.Center))

			Convey("Then the failure is surfaced and the machine stays idle", func() {
				So(ev, ShouldBeNil)
				So(errors.Is(err, selection.ErrScheduleUnlock), ShouldBeTrue)
				So(m.Locked(), ShouldBeFalse)
				So(m.Snapshot().Event, ShouldBeNil)
			})
		})
	})
}

func TestNewRejectsRaggedGrid(t *testing.T) {
	grid := numberedGrid(3)
	grid[1] = grid[1][:7]
	if _, err := selection.New("Home", grid); !errors.Is(err, selection.ErrInvalidGrid) {
		t.Errorf("New() error = %v, want ErrInvalidGrid", err)
	}
}

func TestColumnsPartitionRow(t *testing.T) {
	seen := make(map[int]model.Direction)
	for _, d := range model.Directions {
		cols := selection.Columns(d)
		if len(cols) == 0 {
			t.Fatalf("Columns(%v) is empty", d)
		}
		for _, c := range cols {
			if c < 0 || c >= model.GridColumns {
				t.Errorf("Columns(%v) has out of range column %d", d, c)
			}
			if prev, dup := seen[c]; dup {
				t.Errorf("column %d mapped by both %v and %v", c, prev, d)
			}
			seen[c] = d
		}
	}
	if len(seen) != model.GridColumns {
		t.Errorf("columns covered = %d, want %d", len(seen), model.GridColumns)
	}

	cols := selection.Columns(model.Left)
	cols[0] = 0
	if selection.Columns(model.Left)[0] != 5 {
		t.Error("Columns returned a shared slice")
	}
	if selection.Columns(model.Direction(42)) != nil {
		t.Error("unknown direction should map to nil")
	}
}

func TestCloseStopsRealTimer(t *testing.T) {
	m, err := selection.New("Home", numberedGrid(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Trigger(context.Background(), blink(model.Right)); err != nil {
		t.Fatal(err)
	}
	if !m.Locked() {
		t.Fatal("expected lock")
	}
	m.Close()
	if m.Locked() {
		t.Error("Close should release the lock state")
	}
}
