package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/gazeboard/internal/adapters/http/api"
	"github.com/okian/gazeboard/internal/adapters/sink"
	"github.com/okian/gazeboard/internal/config"
	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/internal/replay"
	"github.com/okian/gazeboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainApplication(t *testing.T) {
	convey.Convey("Given the assembled application", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New()
		cfg.TickIntervalMS = 10
		svc := newService(cfg)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, cfg, svc))
		defer srv.Close()

		convey.Convey("When a websocket client is listening and a blink frame is posted", func() {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			convey.So(err, convey.ShouldBeNil)
			defer conn.Close()
			_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

			body, err := json.Marshal(replay.Synthesize(model.Left, true, 640, 480, 1))
			convey.So(err, convey.ShouldBeNil)

			// The hub subscription is registered after the upgrade returns.
			deadline := time.Now().Add(3 * time.Second)
			for svc.GetStats()["subscribers"] != 1 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			resp, err := http.Post(srv.URL+"/frames", "application/json", bytes.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)

			var got sink.Message
			convey.Convey("Then the stream carries a selection and /state is locked", func() {
				for got.Type != sink.TypeSelection {
					convey.So(conn.ReadJSON(&got), convey.ShouldBeNil)
				}
				convey.So(got.Event.Columns, convey.ShouldResemble, []int{5, 6, 7})

				resp, err := http.Get(srv.URL + "/state")
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				var st api.State
				convey.So(json.NewDecoder(resp.Body).Decode(&st), convey.ShouldBeNil)
				convey.So(st.Locked, convey.ShouldBeTrue)
				convey.So(st.Category, convey.ShouldEqual, "Home")

				hist, err := http.Get(srv.URL + "/selections/" + got.Event.ID)
				convey.So(err, convey.ShouldBeNil)
				defer hist.Body.Close()
				convey.So(hist.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When scraping /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			data, _ := io.ReadAll(resp.Body)

			convey.Convey("Then pipeline metrics are exported", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(data), convey.ShouldContainSubstring, "gazeboard_pipeline_")
			})
		})

		convey.Convey("When fetching the API document", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it is served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When an oversized frame is posted", func() {
			small := *cfg
			small.MaxFrameBytes = 16
			limited := httptest.NewServer(newHandler(ctx, &small, svc))
			defer limited.Close()

			resp, err := http.Post(limited.URL+"/frames", "application/json",
				strings.NewReader(`{"width":640,"height":480,"landmarks":[[1,2],[3,4]]}`))
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()

			convey.Convey("Then it is rejected with 413", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a sample can be taken without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("GAZE_TICK_INTERVAL_MS", "-5")
	if err := run(context.Background()); err == nil {
		t.Fatal("run() with a negative tick interval returned nil")
	}
}
