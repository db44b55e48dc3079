package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	scoreUpdatesTotal      *prometheus.CounterVec
	batchSkippedTeamsTotal prometheus.Counter
	leaderboardSubscribers prometheus.Gauge
	cacheLookupsTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exposed by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		scoreUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "score_updates_total",
			Help: "Evaluations updated, split by explicit save and auto-save.",
		}, []string{"mode"})

		batchSkippedTeamsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batch_skipped_teams_total",
			Help: "Teams skipped by batch score updates.",
		})

		leaderboardSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leaderboard_subscribers",
			Help: "Live leaderboard stream subscribers on this node.",
		})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Leaderboard and marksheet cache lookups by outcome.",
		}, []string{"view", "outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			scoreUpdatesTotal,
			batchSkippedTeamsTotal,
			leaderboardSubscribers,
			cacheLookupsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ScoreUpdates exposes the score update counter labelled by mode.
func ScoreUpdates() *prometheus.CounterVec {
	RegisterMetrics()
	return scoreUpdatesTotal
}

// BatchSkippedTeams exposes the skipped-team counter.
func BatchSkippedTeams() prometheus.Counter {
	RegisterMetrics()
	return batchSkippedTeamsTotal
}

// LeaderboardSubscribers exposes the live subscriber gauge.
func LeaderboardSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return leaderboardSubscribers
}

// CacheLookups exposes the cache hit/miss counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}
