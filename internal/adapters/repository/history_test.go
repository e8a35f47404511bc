package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/gazeboard/internal/domain/model"
)

func event(i int) model.SelectionEvent {
	return model.SelectionEvent{
		ID:        fmt.Sprintf("sel-%d", i),
		Direction: model.Center,
		Columns:   []int{3, 4},
		Grid:      model.Grid{{"d", "e"}},
		Category:  "Home",
		At:        time.Unix(int64(i), 0).UTC(),
	}
}

func TestHistoryStore(t *testing.T) {
	convey.Convey("Given a history store with capacity 3", t, func() {
		ctx := context.Background()
		s := NewHistoryStore(WithCapacity(3))

		convey.Convey("When it is empty", func() {
			convey.Convey("Then Recent returns nothing and Count is zero", func() {
				got, err := s.Recent(ctx, 5)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldBeEmpty)
				convey.So(s.Count(ctx), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When two events are added", func() {
			convey.So(s.Add(ctx, event(1)), convey.ShouldBeNil)
			convey.So(s.Add(ctx, event(2)), convey.ShouldBeNil)

			convey.Convey("Then Recent lists them newest first", func() {
				got, err := s.Recent(ctx, 10)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(got), convey.ShouldEqual, 2)
				convey.So(got[0].ID, convey.ShouldEqual, "sel-2")
				convey.So(got[1].ID, convey.ShouldEqual, "sel-1")
			})

			convey.Convey("Then Get finds each by id", func() {
				ev, err := s.Get(ctx, "sel-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(ev.Columns, convey.ShouldResemble, []int{3, 4})
				convey.So(ev.At.Equal(time.Unix(1, 0)), convey.ShouldBeTrue)
			})

			convey.Convey("Then returned events do not alias the store", func() {
				ev, _ := s.Get(ctx, "sel-1")
				ev.Columns[0] = 99
				ev.Grid[0][0] = "zz"
				again, _ := s.Get(ctx, "sel-1")
				convey.So(again.Columns[0], convey.ShouldEqual, 3)
				convey.So(again.Grid[0][0], convey.ShouldEqual, "d")
			})
		})

		convey.Convey("When more events are added than it holds", func() {
			for i := 1; i <= 5; i++ {
				convey.So(s.Add(ctx, event(i)), convey.ShouldBeNil)
			}

			convey.Convey("Then the oldest are evicted", func() {
				convey.So(s.Count(ctx), convey.ShouldEqual, 3)
				got, err := s.Recent(ctx, 3)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got[0].ID, convey.ShouldEqual, "sel-5")
				convey.So(got[2].ID, convey.ShouldEqual, "sel-3")

				_, err = s.Get(ctx, "sel-2")
				convey.So(errors.Is(err, ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the same id is added twice", func() {
			convey.So(s.Add(ctx, event(1)), convey.ShouldBeNil)
			convey.So(s.Add(ctx, event(1)), convey.ShouldBeNil)
			convey.So(s.Add(ctx, event(2)), convey.ShouldBeNil)
			convey.So(s.Add(ctx, event(3)), convey.ShouldBeNil)

			convey.Convey("Then evicting the older copy keeps the newer one reachable", func() {
				_, err := s.Get(ctx, "sel-1")
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When inputs are invalid", func() {
			convey.Convey("Then an event without id is refused", func() {
				err := s.Add(ctx, model.SelectionEvent{})
				convey.So(errors.Is(err, ErrMissingID), convey.ShouldBeTrue)
			})

			convey.Convey("Then a non-positive limit is refused", func() {
				_, err := s.Recent(ctx, 0)
				convey.So(errors.Is(err, ErrInvalidLimit), convey.ShouldBeTrue)
			})

			convey.Convey("Then an unknown id is not found", func() {
				_, err := s.Get(ctx, "nope")
				convey.So(errors.Is(err, ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestHistoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(WithCapacity(16))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Add(ctx, event(w*1000+i))
				_, _ = s.Recent(ctx, 8)
			}
		}(w)
	}
	wg.Wait()

	if got := s.Count(ctx); got != 16 {
		t.Fatalf("count = %d, want 16", got)
	}
}
