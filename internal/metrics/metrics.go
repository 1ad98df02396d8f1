// Package metrics exposes prometheus instrumentation for the EMR core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitalens_store_operations_total",
		Help: "Record store operations by collection and operation.",
	}, []string{"collection", "operation"})

	aiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitalens_ai_requests_total",
		Help: "AI analysis flow invocations by flow and status.",
	}, []string{"flow", "status"})

	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vitalens_ai_request_duration_seconds",
		Help:    "Latency of AI analysis flows.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"flow"})

	remindersDue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalens_reminders_due_total",
		Help: "Appointments found due by the reminder job.",
	})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitalens_auth_attempts_total",
		Help: "Login and signup attempts by outcome.",
	}, []string{"action", "outcome"})
)

func RecordStoreOp(collection, operation string) {
	storeOps.WithLabelValues(collection, operation).Inc()
}

func RecordAIRequest(flow string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	aiRequests.WithLabelValues(flow, status).Inc()
	aiDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

func RecordRemindersDue(n int) {
	remindersDue.Add(float64(n))
}

func RecordAuthAttempt(action string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	authAttempts.WithLabelValues(action, outcome).Inc()
}
