package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_events_published_total",
			Help: "Total number of user events handed to the broker, by outcome",
		},
		[]string{"kind", "status"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_events_dropped_total",
			Help: "Total number of user events dropped before reaching the broker",
		},
		[]string{"kind", "reason"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_events_publish_duration_seconds",
			Help:    "Duration of a single publish attempt",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"kind"},
	)
)
