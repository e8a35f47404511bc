package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// value reads the current value of a counter or gauge.
func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		panic(err)
	}
	if m.GetCounter() != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When they are applied to a manager", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("gz"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names, labels and intervals follow them", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				manager.ticks.Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_gz_ticks_total" {
						found = true
						labels := mf.GetMetric()[0].GetLabel()
						So(len(labels), ShouldEqual, 1)
						So(labels[0].GetName(), ShouldEqual, "env")
						So(labels[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When invalid values are given", func() {
			manager := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithRefreshInterval(-time.Second),
				WithHistogramBuckets(nil),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "gazeboard")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
			manager.blinks.Inc()

			Convey("Then nothing is registered on the given registry", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When pipeline metrics are recorded", func() {
			beforeSel := value(globalManager.selections.WithLabelValues("Left"))
			beforeSup := value(globalManager.suppressed)

			RecordSelection("Left")
			RecordSuppressedTrigger()

			Convey("Then counters and the lock gauge move", func() {
				So(value(globalManager.selections.WithLabelValues("Left")), ShouldEqual, beforeSel+1)
				So(value(globalManager.suppressed), ShouldEqual, beforeSup+1)
				So(value(globalManager.lockActive), ShouldEqual, 1.0)

				RecordUnlock()
				So(value(globalManager.lockActive), ShouldEqual, 0.0)
			})
		})

		Convey("When every recorder is called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordFrameReceived("http")
					RecordFrameDropped("stale")
					RecordTick(1.5)
					RecordMissingFace()
					RecordGaze("Center")
					RecordBlink()
					RecordEyeOpenness(0.3)
					RecordDegenerateEye("left")
					RecordPipelineError("malformed_frame")
					RecordCategorySwitch("Food")
					RecordSinkDropped("status")
					UpdateStreamClients(2)
					UpdateQueueSize(3)
					UpdateQueueCapacity(64)
					UpdateQueueUtilization(3.0 / 64)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueSuperseded(2)
					RecordHTTPRequest("/frames", "POST", "202")
					RecordHTTPRequestDuration("/frames", "POST", "202", 0.4)
					RecordErrorByComponent("runner", "schedule_unlock")
					RecordErrorByEndpoint("/frames", "POST", "bad_request")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestTotals(t *testing.T) {
	Convey("Given a registry with labelled counters", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))
		m.selections.WithLabelValues("Left").Add(2)
		m.selections.WithLabelValues("Right").Inc()
		m.streamClients.Set(4)

		Convey("When totals are gathered", func() {
			totals, err := Totals(registry,
				"gazeboard_pipeline_selections_total",
				"gazeboard_pipeline_stream_clients",
				"gazeboard_pipeline_missing_metric",
			)

			Convey("Then label dimensions are summed", func() {
				So(err, ShouldBeNil)
				So(totals["gazeboard_pipeline_selections_total"], ShouldEqual, 3.0)
				So(totals["gazeboard_pipeline_stream_clients"], ShouldEqual, 4.0)
				_, ok := totals["gazeboard_pipeline_missing_metric"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the gatherer fails", func() {
			_, err := Totals(failingGatherer{})

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, ErrObserveFailed), ShouldBeTrue)
			})
		})
	})

	Convey("The served registry is the custom one", t, func() {
		So(GetRegistry(), ShouldEqual, customRegistry)
		So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
	})
}

type failingGatherer struct{}

func (failingGatherer) Gather() ([]*dto.MetricFamily, error) { return nil, errors.New("boom") }
