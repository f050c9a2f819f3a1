package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the lead tracker. A nil *Metrics
// is valid and records nothing, so tests can construct services without a
// registry.
type Metrics struct {
	LeadsCreated       prometheus.Counter
	StatusChanges      prometheus.Counter
	NotesAdded         prometheus.Counter
	RemindersCompleted prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New() *Metrics {
	return &Metrics{
		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadtrack_leads_created_total",
			Help: "Total number of leads created",
		}),
		StatusChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadtrack_lead_status_changes_total",
			Help: "Total number of lead status transitions",
		}),
		NotesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadtrack_notes_added_total",
			Help: "Total number of notes added to leads",
		}),
		RemindersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadtrack_reminders_completed_total",
			Help: "Total number of reminders marked complete",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadtrack_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}
}

// IncLeadsCreated records a successful lead creation.
func (m *Metrics) IncLeadsCreated() {
	if m == nil {
		return
	}
	m.LeadsCreated.Inc()
}

// IncStatusChanges records a lead status transition.
func (m *Metrics) IncStatusChanges() {
	if m == nil {
		return
	}
	m.StatusChanges.Inc()
}

// IncNotesAdded records a note addition.
func (m *Metrics) IncNotesAdded() {
	if m == nil {
		return
	}
	m.NotesAdded.Inc()
}

// IncRemindersCompleted records a reminder completion.
func (m *Metrics) IncRemindersCompleted() {
	if m == nil {
		return
	}
	m.RemindersCompleted.Inc()
}

// ObserveRequest records the duration of one handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
