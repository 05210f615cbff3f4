package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotelbook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Booking admission decisions by outcome code.",
		},
		[]string{"outcome"},
	)

	conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Room types rejected at admission because of overlapping bookings.",
		},
		[]string{"room_type"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Applied booking status transitions by target status.",
		},
		[]string{"to"},
	)

	snapshotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Upcoming-bookings snapshot lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, admissions, conflicts, transitions, snapshotCache)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncAdmission records an admission outcome: "admitted" or a rejection code.
func IncAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func IncConflict(roomType string) {
	conflicts.WithLabelValues(roomType).Inc()
}

func IncTransition(to string) {
	transitions.WithLabelValues(to).Inc()
}

func IncSnapshot(result string) {
	snapshotCache.WithLabelValues(result).Inc()
}
