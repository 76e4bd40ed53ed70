package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsProduced tracks work items created by the producer
	ItemsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botkit_items_produced_total",
			Help: "Total number of work items created by the producer",
		},
	)

	// ItemsConsumed tracks consumed work items by outcome
	ItemsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botkit_items_consumed_total",
			Help: "Total number of work items consumed",
		},
		[]string{"outcome"}, // done, failed
	)

	// FailuresTotal tracks classified failures by kind
	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botkit_failures_total",
			Help: "Total number of classified failures",
		},
		[]string{"kind"},
	)

	// ReporterItems tracks reportable failures captured for the reporter
	ReporterItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botkit_reporter_items_total",
			Help: "Total number of reporter items captured",
		},
	)

	// ReportsSent tracks outbound reports by delivery mode
	ReportsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botkit_reports_sent_total",
			Help: "Total number of reports sent",
		},
		[]string{"mode"}, // sent, draft
	)

	// RunDuration tracks role run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "botkit_run_duration_seconds",
			Help:    "Role run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)
)
