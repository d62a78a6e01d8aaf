// Package metrics holds the Prometheus collectors for the campus API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
)

// LoginAttempts counts login attempts by outcome.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campus_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"outcome"},
)

// Registrations counts account registrations by outcome.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campus_registrations_total",
		Help: "Total number of account registrations by outcome",
	},
	[]string{"outcome"},
)

// SessionEvents counts session lifecycle transitions.
var SessionEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campus_session_events_total",
		Help: "Session lifecycle transitions (created, destroyed, expired, invalid)",
	},
	[]string{"event"},
)

// Transactions counts executor outcomes by transaction name.
var Transactions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campus_transactions_total",
		Help: "Transactional executor runs by name and result",
	},
	[]string{"tx", "result"},
)

// HTTPDuration observes request latency.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "campus_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// RegisterMetrics registers all collectors with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts, Registrations, SessionEvents, Transactions, HTTPDuration)
}

func RecordLogin(outcome string)        { LoginAttempts.WithLabelValues(outcome).Inc() }
func RecordRegistration(outcome string) { Registrations.WithLabelValues(outcome).Inc() }
func RecordSession(event string)        { SessionEvents.WithLabelValues(event).Inc() }
func RecordTxCommit(name string)        { Transactions.WithLabelValues(name, "commit").Inc() }
func RecordTxRollback(name string)      { Transactions.WithLabelValues(name, "rollback").Inc() }

// RecordHTTP observes one served request.
func RecordHTTP(method, status string, d time.Duration) {
	HTTPDuration.WithLabelValues(method, status).Observe(d.Seconds())
}
