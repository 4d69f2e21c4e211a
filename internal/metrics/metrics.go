package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	sagaCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "booking_commits_total",
			Help:      "Successful booking sagas by source kind.",
		},
		[]string{"source"},
	)

	sagaConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "booking_conflicts_total",
			Help:      "Claims rejected at the conditional commit gate.",
		},
	)

	compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "saga_compensations_total",
			Help:      "Compensation runs by failed step.",
		},
		[]string{"step"},
	)

	compensationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "saga_compensation_failures_total",
			Help:      "Compensating writes that themselves failed.",
		},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "palco",
			Name:      "payout_settlements_total",
			Help:      "Payout settlement runs by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, sagaCommits, sagaConflicts, compensations, compensationFailures, settlements)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncCommit(source string) {
	sagaCommits.WithLabelValues(source).Inc()
}

func IncConflict() {
	sagaConflicts.Inc()
}

func IncCompensation(step string) {
	compensations.WithLabelValues(step).Inc()
}

func IncCompensationFailure() {
	compensationFailures.Inc()
}

func IncSettlement(outcome string) {
	settlements.WithLabelValues(outcome).Inc()
}
