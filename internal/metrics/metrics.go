package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "reservations_total",
			Help:      "Reservation outcomes by result.",
		},
		[]string{"result"},
	)

	tokenFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "token_failures_total",
			Help:      "Token validation failures by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, tokenFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation records a booking outcome, e.g. "created",
// "slot_taken", "canceled".
func IncReservation(result string) {
	reservations.WithLabelValues(result).Inc()
}

// IncTokenFailure records a token validation failure reason.
func IncTokenFailure(reason string) {
	tokenFailures.WithLabelValues(reason).Inc()
}
