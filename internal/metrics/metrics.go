package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total relay requests by outcome",
		},
		[]string{"status", "error_code"},
	)

	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "relay_request_duration_seconds",
			Help: "End to end relay request duration in seconds",
		},
		[]string{"status"},
	)

	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_upstream_attempts_total",
			Help: "Upstream call attempts by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "relay_upstream_attempt_duration_seconds",
			Help: "Duration of individual upstream attempts in seconds",
		},
		[]string{"outcome"},
	)
)
