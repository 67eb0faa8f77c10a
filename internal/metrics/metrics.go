package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitgrow_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitgrow_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitgrow_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Domain metrics
	Signups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitgrow_signups_total",
			Help: "Total number of accounts created",
		},
	)

	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitgrow_login_failures_total",
			Help: "Total number of rejected login attempts",
		},
	)

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitgrow_events_ingested_total",
			Help: "Total number of activity events stored, by type and source",
		},
		[]string{"type", "source"},
	)

	MealsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitgrow_meals_ingested_total",
			Help: "Total number of nutrition entries stored, by meal type",
		},
		[]string{"meal_type"},
	)

	DigestsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitgrow_digests_total",
			Help: "Daily digest emails by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records one served request
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
