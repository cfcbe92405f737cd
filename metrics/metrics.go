package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the scheduling core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecurrenceRuns prometheus.Counter
	JobsGenerated  prometheus.Counter
	PlanFailures   prometheus.Counter
	Notifications  *prometheus.CounterVec
	OutboxPending  prometheus.Gauge
	RequestsTotal  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecurrenceRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cleancans",
			Subsystem: "recurrence",
			Name:      "runs_total",
			Help:      "Total number of recurring job generation passes.",
		}),
		JobsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cleancans",
			Subsystem: "recurrence",
			Name:      "jobs_generated_total",
			Help:      "Total number of jobs materialized from recurring plans.",
		}),
		PlanFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cleancans",
			Subsystem: "recurrence",
			Name:      "plan_failures_total",
			Help:      "Total number of plans that failed to materialize during a pass.",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cleancans",
			Subsystem: "sms",
			Name:      "deliveries_total",
			Help:      "SMS delivery attempts by category and outcome.",
		}, []string{"category", "status"}), // status: sent, retry, failed
		OutboxPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cleancans",
			Subsystem: "sms",
			Name:      "outbox_pending",
			Help:      "Pending notifications seen by the last outbox pass.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cleancans",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

// RecurrencePass records one generation pass
func (m *Metrics) RecurrencePass(generated, failed int) {
	if m == nil {
		return
	}
	m.RecurrenceRuns.Inc()
	m.JobsGenerated.Add(float64(generated))
	m.PlanFailures.Add(float64(failed))
}

// Delivery records one notification delivery attempt
func (m *Metrics) Delivery(category, status string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(category, status).Inc()
}

// Pending records the outbox backlog
func (m *Metrics) Pending(n int) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(n))
}

// Request records one handled HTTP request
func (m *Metrics) Request(route, code string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, code).Inc()
}
