package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for command counters.
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// POSMetrics records counter activity.
type POSMetrics struct {
	duration      *prometheus.HistogramVec
	commands      *prometheus.CounterVec
	changes       *prometheus.CounterVec
	flushFailures *prometheus.CounterVec
	bills         prometheus.Counter
	revenue       prometheus.Counter
}

// NewPOSMetrics registers the counter metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "counterpos_command_duration_seconds",
		Help:    "Duration of POS commands in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counterpos_commands_total",
		Help: "POS commands by outcome.",
	}, []string{"command", "outcome"})
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counterpos_state_changes_total",
		Help: "State change notifications by collection and action.",
	}, []string{"collection", "action"})
	flushFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counterpos_flush_failures_total",
		Help: "Failed writes of a collection to the store.",
	}, []string{"collection"})
	bills := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counterpos_bills_created_total",
		Help: "Bills appended to the ledger.",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counterpos_revenue_rupees_total",
		Help: "Sum of bill totals in rupees.",
	})
	reg.MustRegister(duration, commands, changes, flushFailures, bills, revenue)
	return &POSMetrics{
		duration:      duration,
		commands:      commands,
		changes:       changes,
		flushFailures: flushFailures,
		bills:         bills,
		revenue:       revenue,
	}
}

// ObserveCommand records the duration and outcome of a command.
func (m *POSMetrics) ObserveCommand(command, outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	command = normalizeLabel(command)
	m.duration.WithLabelValues(command).Observe(duration.Seconds())
	m.commands.WithLabelValues(command, normalizeLabel(outcome)).Inc()
}

// IncChange counts a state change notification.
func (m *POSMetrics) IncChange(collection, action string) {
	if m == nil || m.changes == nil {
		return
	}
	m.changes.WithLabelValues(normalizeLabel(collection), normalizeLabel(action)).Inc()
}

// IncFlushFailure counts a failed write of collection.
func (m *POSMetrics) IncFlushFailure(collection string) {
	if m == nil || m.flushFailures == nil {
		return
	}
	m.flushFailures.WithLabelValues(normalizeLabel(collection)).Inc()
}

// ObserveBill counts a new bill and adds its total to revenue.
func (m *POSMetrics) ObserveBill(total float64) {
	if m == nil || m.bills == nil {
		return
	}
	m.bills.Inc()
	if total > 0 {
		m.revenue.Add(total)
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
