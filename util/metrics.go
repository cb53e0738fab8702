package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	framesCapturedCounter    prometheus.Counter
	framesFailedCounter      prometheus.Counter
	handsStartedCounter      prometheus.Counter
	handsCompletedCounter    prometheus.Counter
	actionsDetectedCounter   prometheus.Counter
	lowConfidenceReadCounter prometheus.Counter
	activeTablesGauge        prometheus.Gauge
}

func (m *metrics) FrameCaptured() {
	m.framesCapturedCounter.Inc()
}

func (m *metrics) FrameFailed() {
	m.framesFailedCounter.Inc()
}

func (m *metrics) HandStarted() {
	m.handsStartedCounter.Inc()
}

func (m *metrics) HandCompleted() {
	m.handsCompletedCounter.Inc()
}

func (m *metrics) ActionDetected() {
	m.actionsDetectedCounter.Inc()
}

func (m *metrics) LowConfidenceRead() {
	m.lowConfidenceReadCounter.Inc()
}

func (m *metrics) SetActiveTableCount(count int) {
	m.activeTablesGauge.Set(float64(count))
}

var Metrics = &metrics{
	framesCapturedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_captured_total",
		Help: "Total number of table frames captured",
	}),
	framesFailedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_failed_total",
		Help: "Total number of frames that failed to capture or parse",
	}),
	handsStartedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hands_started_total",
		Help: "Total number of hands the tracker started",
	}),
	handsCompletedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hands_completed_total",
		Help: "Total number of hands marked complete",
	}),
	actionsDetectedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "actions_detected_total",
		Help: "Total number of player actions synthesized from snapshot diffs",
	}),
	lowConfidenceReadCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_confidence_reads_total",
		Help: "Total number of OCR reads dropped below the confidence threshold",
	}),
	activeTablesGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_tables_count",
		Help: "Count of table pipelines currently being tracked",
	}),
}
