package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("Business metrics record without panicking", func() {
			So(func() {
				RecordLeadProcessed()
				RecordLeadFailed()
				RecordDecision("high", true)
				RecordDecision("low", false)
				RecordIntentScore(72.5)
				RecordICPScore(88.0)
				RecordScoringLatency(12.0)
				RecordSignalIngested()
				RecordSignalDuplicate()
				RecordSignalRejected()
				RecordClassifierLatency(95.0)
				RecordClassifierError()
			}, ShouldNotPanic)
		})

		Convey("Store metrics record without panicking", func() {
			So(func() {
				UpdateSignalStoreSize(10)
				UpdateDecisionStoreSize(4)
				RecordDecisionStorePut()
				RecordStoreQueryLatency(0.2)
				RecordStoreUpdateLatency(0.3)
				RecordDecisionStoreError()
			}, ShouldNotPanic)
		})

		Convey("Queue and worker metrics record without panicking", func() {
			So(func() {
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				UpdateWorkerIdleCount(2)
				RecordWorkerProcessingLatency(8.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("HTTP, error, and system metrics record without panicking", func() {
			So(func() {
				RecordHTTPRequest("/v1/score", "POST", "200")
				RecordHTTPRequestDuration("/v1/score", "POST", "200", 3.5)
				RecordErrorByComponent("classifier", "inference_failed")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The service registry is shared and non-nil", t, func() {
		So(GetRegistry(), ShouldNotBeNil)
		So(GetRegistry(), ShouldEqual, GetRegistry())
	})
}
