package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	TypeEvent      = "event"
	TypeAdminEvent = "admin_event"

	OutcomeAdmitted  = "admitted"
	OutcomeRejected  = "rejected"
	OutcomeFlushed   = "flushed"
	OutcomeDiscarded = "discarded"
)

// Metrics holds the Prometheus metrics for the notification pipeline.
// All methods are safe on a nil receiver so components can run unobserved.
type Metrics struct {
	EventsFiltered         *prometheus.CounterVec
	BatchesCompleted       *prometheus.CounterVec
	NotificationsDelivered *prometheus.CounterVec
	NotificationsFailed    *prometheus.CounterVec
	DeliveryDuration       prometheus.Histogram
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herald_events_filtered_total",
			Help: "Incoming events by type and filter outcome (admitted/rejected)",
		}, []string{"type", "outcome"}),
		BatchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herald_batches_completed_total",
			Help: "Units of work completed, by outcome (flushed/discarded)",
		}, []string{"outcome"}),
		NotificationsDelivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herald_notifications_delivered_total",
			Help: "Notifications accepted by the chat service",
		}, []string{"type"}),
		NotificationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herald_notifications_failed_total",
			Help: "Notifications abandoned, by type and reason",
		}, []string{"type", "reason"}),
		DeliveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "herald_delivery_duration_seconds",
			Help:    "Duration of a single chat service delivery",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncFiltered records a filter decision.
func (m *Metrics) IncFiltered(eventType string, admitted bool) {
	if m == nil {
		return
	}
	outcome := OutcomeRejected
	if admitted {
		outcome = OutcomeAdmitted
	}
	m.EventsFiltered.WithLabelValues(eventType, outcome).Inc()
}

// IncBatch records how a unit of work ended.
func (m *Metrics) IncBatch(outcome string) {
	if m == nil {
		return
	}
	m.BatchesCompleted.WithLabelValues(outcome).Inc()
}

// IncDelivered records a successful delivery.
func (m *Metrics) IncDelivered(eventType string) {
	if m == nil {
		return
	}
	m.NotificationsDelivered.WithLabelValues(eventType).Inc()
}

// IncFailed records an abandoned notification.
func (m *Metrics) IncFailed(eventType, reason string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(eventType, reason).Inc()
}

// ObserveDelivery records the duration of one delivery attempt.
// Call with time.Now() at the start of the attempt.
func (m *Metrics) ObserveDelivery(start time.Time) {
	if m == nil {
		return
	}
	m.DeliveryDuration.Observe(time.Since(start).Seconds())
}
