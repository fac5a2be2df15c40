package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"slotbook/internal/domain"
)

type Metrics struct {
	Registry *prometheus.Registry

	BookingsTotal    *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New registers the slotbook collectors on reg, or on a fresh registry when
// reg is nil.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		BookingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slotbook_bookings_total",
				Help: "Booking attempts by outcome.",
			},
			[]string{"outcome"},
		),
		TransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slotbook_status_transitions_total",
				Help: "Appointment status change requests by target status and outcome.",
			},
			[]string{"status", "outcome"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slotbook_grpc_requests_total",
				Help: "Handled gRPC requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slotbook_grpc_request_duration_seconds",
				Help:    "gRPC request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) BookingAttempt(outcome string) {
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StatusTransition(status domain.Status, outcome string) {
	m.TransitionsTotal.WithLabelValues(string(status), outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, code string, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
