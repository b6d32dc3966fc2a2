package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue reads the current value of a counter collector.
func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "repute")
				So(manager.subsystem, ShouldEqual, "reputation")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("engine"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.eventsRecorded.WithLabelValues("task_completed").Inc()

			Convey("Then collectors should carry the custom names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_engine_events_recorded_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When ignoring empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "repute")
				So(manager.subsystem, ShouldEqual, "reputation")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording reputation events", func() {
			before := counterValue(globalManager.eventsRecorded.WithLabelValues("dispute_lost"))
			RecordEvent("dispute_lost")
			RecordEvent("dispute_lost")

			Convey("Then the labelled counter should grow", func() {
				after := counterValue(globalManager.eventsRecorded.WithLabelValues("dispute_lost"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording decay", func() {
			before := counterValue(globalManager.decayPoints)
			RecordDecay(7)

			Convey("Then the removed points should be summed", func() {
				So(counterValue(globalManager.decayPoints)-before, ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining collectors", func() {
			So(func() {
				RecordEventDuplicate()
				RecordProfileInitialized()
				RecordTierTransition("up")
				RecordTierTransition("down")
				RecordAchievementAwarded("1")
				RecordLeaderboardUpdate()
				UpdateLeaderboardGroups(3)
				RecordLeaderboardQuery()
				RecordNotificationPublished("reputation_updated")
				RecordNotificationDropped()
				UpdateNotifyQueueSize(4)
				RecordDispatchLatency(1.5)
				RecordStoreLatency("get", 0.2)
				RecordHTTPRequest("profiles", "GET", "200")
				RecordHTTPRequestDuration("profiles", "GET", "200", 3)
				RecordErrorByComponent("facade", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When exposing the registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then every family should use the repute namespace", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "repute_reputation_"), ShouldBeTrue)
				}
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric updates", t, func() {
		before := counterValue(globalManager.leaderboardUpdates)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordLeaderboardUpdate()
				}
			}()
		}
		wg.Wait()

		Convey("Then no increment should be lost", func() {
			So(counterValue(globalManager.leaderboardUpdates)-before, ShouldEqual, 1000)
		})
	})
}
