package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignupsTotal        prometheus.Counter
	LoginsTotal         *prometheus.CounterVec
	PasswordResetsTotal prometheus.Counter
	ResetRequestsTotal  prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_signups_total",
			Help: "Total number of users created through signup",
		}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		PasswordResetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_password_resets_total",
			Help: "Total number of completed password resets",
		}),
		ResetRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_reset_requests_total",
			Help: "Total number of forgot-password token issuances",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatehouse_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveLogin records a login attempt outcome ("success", "incorrect_password",
// "username_not_found", "locked", "rejected").
func (m *Metrics) ObserveLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}
