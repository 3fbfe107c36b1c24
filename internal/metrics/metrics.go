// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRecorded counts successfully recorded touchpoints by event type.
	EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_events_recorded_total",
		Help: "Attribution events successfully recorded, by event type.",
	}, []string{"event_type"})

	// EventsDropped counts batch events dropped because the ingestion
	// buffer was full.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attribution_events_dropped_total",
		Help: "Batch events dropped due to a full ingestion buffer.",
	})

	// AttributionRuns counts attribution calculations by outcome
	// (attributed, empty, error).
	AttributionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_runs_total",
		Help: "Attribution calculations, by outcome.",
	}, []string{"outcome"})
)
