// Package metrics exposes Prometheus collectors for the gesture session.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal      *prometheus.CounterVec
	GestureChanges   *prometheus.CounterVec
	IntentsTotal     *prometheus.CounterVec
	ModeTransitions  *prometheus.CounterVec
	CurrentMode      *prometheus.GaugeVec
	FrameDuration    prometheus.Histogram
	SinkErrorsTotal  *prometheus.CounterVec
	LiveClientsGauge prometheus.Gauge
}

// New creates a Metrics instance on its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mudra"
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Landmark frames processed, by tracking status",
			},
			[]string{"status"},
		),
		GestureChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gesture_changes_total",
				Help:      "Published gesture changes, by new gesture",
			},
			[]string{"gesture"},
		),
		IntentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Intents emitted by the interaction machine",
			},
			[]string{"kind"},
		),
		ModeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mode_transitions_total",
				Help:      "Interaction mode transitions",
			},
			[]string{"from", "to"},
		),
		CurrentMode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mode",
				Help:      "1 for the current interaction mode, 0 otherwise",
			},
			[]string{"mode"},
		),
		FrameDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_duration_seconds",
				Help:      "Time spent processing one frame",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
			},
		),
		SinkErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_errors_total",
				Help:      "Failed deliveries to output sinks",
			},
			[]string{"sink"},
		),
		LiveClientsGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_clients",
				Help:      "Connected live broadcast clients",
			},
		),
	}

	registry.MustRegister(
		m.FramesTotal,
		m.GestureChanges,
		m.IntentsTotal,
		m.ModeTransitions,
		m.CurrentMode,
		m.FrameDuration,
		m.SinkErrorsTotal,
		m.LiveClientsGauge,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFrame counts one frame and its processing time.
func (m *Metrics) RecordFrame(tracked bool, took time.Duration) {
	if m == nil {
		return
	}
	status := "lost"
	if tracked {
		status = "tracked"
	}
	m.FramesTotal.WithLabelValues(status).Inc()
	m.FrameDuration.Observe(took.Seconds())
}

// RecordGesture counts a published gesture change.
func (m *Metrics) RecordGesture(gesture string) {
	if m == nil {
		return
	}
	m.GestureChanges.WithLabelValues(gesture).Inc()
}

// RecordIntent counts one emitted intent.
func (m *Metrics) RecordIntent(kind string) {
	if m == nil {
		return
	}
	m.IntentsTotal.WithLabelValues(kind).Inc()
}

// RecordMode counts a transition and moves the current-mode gauge.
func (m *Metrics) RecordMode(from, to string) {
	if m == nil {
		return
	}
	if from != "" {
		m.ModeTransitions.WithLabelValues(from, to).Inc()
		m.CurrentMode.WithLabelValues(from).Set(0)
	}
	m.CurrentMode.WithLabelValues(to).Set(1)
}

// RecordSinkError counts a failed delivery.
func (m *Metrics) RecordSinkError(sink string) {
	if m == nil {
		return
	}
	m.SinkErrorsTotal.WithLabelValues(sink).Inc()
}

// SetLiveClients reports the live broadcast audience.
func (m *Metrics) SetLiveClients(n int) {
	if m == nil {
		return
	}
	m.LiveClientsGauge.Set(float64(n))
}
