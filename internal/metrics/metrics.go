// Package metrics exposes Prometheus instrumentation for the frame pipeline
// and the control channel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	FramesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_frames_delivered_total",
			Help: "Total number of pipeline messages handed to the presentation consumer",
		},
		[]string{"kind"}, // "photo", "video"
	)

	FramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_frames_dropped_total",
			Help: "Total number of pipeline messages dropped because the consumer queue was full",
		},
	)

	SelectionMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_selection_misses_total",
			Help: "Total number of ticks where no media file could be selected",
		},
	)

	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_decode_failures_total",
			Help: "Total number of photos that could not be decoded or were corrupt",
		},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_geocode_requests_total",
			Help: "Total number of reverse geocoding requests",
		},
		[]string{"status"}, // "ok", "empty", "error"
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoframe_cycle_duration_seconds",
			Help:    "Time spent selecting, decoding and geocoding one media item",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	Paused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoframe_paused",
			Help: "Whether the rotation is paused (1 = paused, 0 = playing)",
		},
	)
)

// Control channel metrics
var (
	ControlNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_control_notifications_total",
			Help: "Total number of notifications received on the control topic",
		},
	)

	ControlReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_control_reconnects_total",
			Help: "Total number of control channel reconnect attempts",
		},
	)

	ControlState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photoframe_control_state",
			Help: "Current control channel state (1 for the active state)",
		},
		[]string{"state"},
	)
)
