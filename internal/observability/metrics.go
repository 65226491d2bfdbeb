package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the alert subsystem.
type Metrics struct {
	AlertsTriggered   *prometheus.CounterVec // labels: type, level
	NotificationSends *prometheus.CounterVec // labels: channel, outcome={sent,failed,skipped}
	EvaluateCalls     *prometheus.CounterVec // labels: outcome={alerted,quiet,unconfigured}
	OTPIssued         prometheus.Counter
	OTPVerifications  *prometheus.CounterVec // labels: result={success,not_found,expired,mismatch}
	MonitorRuns       prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsTriggered,
		m.NotificationSends,
		m.EvaluateCalls,
		m.OTPIssued,
		m.OTPVerifications,
		m.MonitorRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "alerts_triggered_total",
			Help:      "Alerts generated by evaluation, by type and severity.",
		}, []string{"type", "level"}),
		NotificationSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "notification_sends_total",
			Help:      "Per-channel delivery attempts by outcome.",
		}, []string{"channel", "outcome"}),
		EvaluateCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "evaluate_calls_total",
			Help:      "Alert evaluation calls by outcome.",
		}, []string{"outcome"}),
		OTPIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "otp_issued_total",
			Help:      "One-time codes issued.",
		}),
		OTPVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by result.",
		}, []string{"result"}),
		MonitorRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "monitor_runs_total",
			Help:      "Saved-location monitor sweeps completed.",
		}),
	}
}
