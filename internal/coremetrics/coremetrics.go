// Package coremetrics registers the core's Prometheus collectors:
// dispatch counters, effect-queue gauges, event-stream backlog, and HTTP
// fetch latency histograms, exposed by cmd/corehost's /metrics endpoint.
// The promauto-at-package-scope registration style is the same one
// linkerd2's multicluster/service-mirror/metrics.go uses for its
// gateway-probe collectors.
package coremetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelMsgType    = "msg_type"
	labelEffectKind = "kind"
	labelOutcome    = "outcome"
)

var (
	// DispatchTotal counts every message Dispatch processes, labeled by
	// its concrete Go type name (e.g. "msg.ActionLoadCatalogWithFilters").
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_dispatch_total",
			Help: "Total messages processed by the runtime dispatcher, by message type.",
		},
		[]string{labelMsgType},
	)

	// DispatchDuration times one full Dispatch call: Update plus every
	// immediate Effect it recursively triggers, excluding scheduled
	// futures (which run on env.Exec's own goroutine).
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "core_dispatch_duration_seconds",
			Help:    "Time spent in one Dispatch call, immediate effects included.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EffectsScheduled counts Effect items the dispatcher handles, split
	// between "immediate" (recursed into the same Dispatch) and "future"
	// (handed to env.Exec) kinds.
	EffectsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_effects_scheduled_total",
			Help: "Effects scheduled for execution, by kind (immediate or future).",
		},
		[]string{labelEffectKind},
	)

	// EffectQueueDepth gauges the number of futures currently in flight
	// (scheduled but not yet resolved back into a Dispatch call).
	EffectQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "core_effect_queue_depth",
			Help: "Futures scheduled but not yet resolved.",
		},
	)

	// EventBacklog gauges the depth of the Notification subscriber
	// channel the demo host drains for its event stream.
	EventBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "core_event_backlog",
			Help: "Pending Notifications waiting to be drained by subscribers.",
		},
	)

	// FetchDuration times one add-on transport HTTP round trip, labeled
	// by outcome ("ok", "env_error", "unexpected_response", "api_error").
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "core_addon_fetch_duration_seconds",
			Help:    "Add-on transport HTTP fetch latency, by outcome.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{labelOutcome},
	)

	// FetchTotal counts add-on transport HTTP fetches, by outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_addon_fetch_total",
			Help: "Add-on transport HTTP fetches, by outcome.",
		},
		[]string{labelOutcome},
	)
)

// ObserveFetch records one completed add-on HTTP fetch's latency and
// outcome in one call, deferred by transport.httpTransport.get and
// transport.legacyTransport.call around each request.
func ObserveFetch(seconds float64, outcome string) {
	FetchDuration.WithLabelValues(outcome).Observe(seconds)
	FetchTotal.WithLabelValues(outcome).Inc()
}
