package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Rating ledger
	RatingsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Total committed rating submissions",
		},
		[]string{"outcome"}, // created|updated
	)
	RatingsRetracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_retracted_total",
			Help: "Total committed rating retractions",
		},
	)
	RatingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_conflicts_total",
			Help: "Total rating submissions surfaced as conflicts",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RatingsSubmitted)
	prometheus.MustRegister(RatingsRetracted)
	prometheus.MustRegister(RatingConflicts)
	prometheus.MustRegister(WorkerQueueDepth)
}
