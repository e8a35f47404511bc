package replay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gazeboard/internal/adapters/http/api"
	service "github.com/okian/gazeboard/internal/app"
	"github.com/okian/gazeboard/internal/replay"
	"github.com/okian/gazeboard/pkg/clock"
	"github.com/okian/gazeboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRun(t *testing.T) {
	Convey("Given a running service on a manual clock", t, func() {
		ctx := context.Background()
		clk := clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
		svc := service.New(service.WithClock(clk), service.WithTickInterval(5*time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		report := filepath.Join(t.TempDir(), "out", "report.json")
		cfg := &replay.Config{
			BaseURL:    srv.URL,
			Tick:       5 * time.Millisecond,
			Timeout:    2 * time.Second,
			OutputFile: report,
			Sleep: func(_ context.Context, d time.Duration) error {
				clk.Advance(d)
				return nil
			},
		}

		Convey("When the scenario is replayed", func() {
			stats, err := replay.Run(ctx, cfg)

			Convey("Then every step passes", func() {
				So(err, ShouldBeNil)
				So(stats.StepsFailed, ShouldEqual, 0)
				So(stats.StepsPassed, ShouldEqual, len(replay.Scenario()))
				So(stats.FramesPosted, ShouldEqual, len(replay.Scenario()))
				So(stats.RunID, ShouldNotBeEmpty)
				last := stats.Steps[len(stats.Steps)-1]
				So(last.Columns, ShouldResemble, []int{3, 4})
			})

			Convey("Then a report is written", func() {
				data, err := os.ReadFile(report)
				So(err, ShouldBeNil)
				var saved replay.Stats
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved.RunID, ShouldEqual, stats.RunID)
				So(len(saved.Steps), ShouldEqual, len(replay.Scenario()))
			})
		})
	})
}

func TestRunDetectsMismatch(t *testing.T) {
	Convey("Given a service that never locks", t, func() {
		var seq atomic.Uint64
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/frames", func(w http.ResponseWriter, r *http.Request) {
			var f struct {
				Seq uint64 `json:"seq"`
			}
			_ = json.NewDecoder(r.Body).Decode(&f)
			seq.Store(f.Seq)
			w.WriteHeader(http.StatusAccepted)
		})
		mux.HandleFunc("/state", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(api.State{Seq: seq.Load(), FaceDetected: true, Status: "Looking Right"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := &replay.Config{
			BaseURL: srv.URL,
			Tick:    time.Millisecond,
			Timeout: time.Second,
			Sleep:   func(context.Context, time.Duration) error { return nil },
		}

		Convey("When the scenario is replayed", func() {
			stats, err := replay.Run(context.Background(), cfg)

			Convey("Then the failed steps are reported", func() {
				So(errors.Is(err, replay.ErrVerification), ShouldBeTrue)
				So(stats.StepsPassed, ShouldEqual, 1)
				So(stats.StepsFailed, ShouldEqual, len(replay.Scenario())-1)
				So(stats.Steps[1].Error, ShouldContainSubstring, "locked = false, want true")
			})
		})
	})
}

func TestRunUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := replay.Run(context.Background(), &replay.Config{BaseURL: url, Timeout: time.Second})
	if err == nil {
		t.Fatal("Run() against a closed server returned nil")
	}
}
