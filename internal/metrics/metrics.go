package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wonny/clientwatch/internal/contracts"
)

// Metrics provides observability for evaluations, scans and the API.
type Metrics struct {
	// Alerts produced by type and priority
	AlertsGenerated *prometheus.CounterVec

	// Client compliance outcomes by status
	ComplianceStatus *prometheus.CounterVec

	// Isolated per-client failures by rule or factor
	Diagnostics *prometheus.CounterVec

	// Full evaluation latency
	EvaluateLatency prometheus.Histogram

	// Clients in the last evaluation
	ClientsEvaluated prometheus.Gauge

	// Scheduled scan results by status
	ScanRuns *prometheus.CounterVec

	// API request latency by route and status code
	HTTPLatency *prometheus.HistogramVec
}

// New registers all metrics on the default registry.
// Call once per process.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers all metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AlertsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clientwatch_alerts_generated_total",
			Help: "Total alerts produced by type and priority",
		}, []string{"type", "priority"}),

		ComplianceStatus: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clientwatch_compliance_scores_total",
			Help: "Total client compliance scores by status",
		}, []string{"status"}),

		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clientwatch_record_diagnostics_total",
			Help: "Malformed-record diagnostics by rule or factor",
		}, []string{"source"}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "clientwatch_evaluate_duration_seconds",
			Help:    "Duration of a full portfolio evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ClientsEvaluated: f.NewGauge(prometheus.GaugeOpts{
			Name: "clientwatch_clients_evaluated",
			Help: "Number of clients in the most recent evaluation",
		}),

		ScanRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clientwatch_scan_runs_total",
			Help: "Scheduled scan runs by status",
		}, []string{"status"}), // status: "success", "failed"

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clientwatch_http_request_duration_seconds",
			Help:    "API request duration by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}

// ObserveAlerts counts alerts by type and priority.
func (m *Metrics) ObserveAlerts(alerts []contracts.Alert) {
	if m == nil {
		return
	}
	for _, a := range alerts {
		m.AlertsGenerated.WithLabelValues(string(a.Type), a.Priority.String()).Inc()
	}
}

// ObserveScores counts compliance outcomes by status.
func (m *Metrics) ObserveScores(scores []contracts.ComplianceScore) {
	if m == nil {
		return
	}
	for _, s := range scores {
		m.ComplianceStatus.WithLabelValues(string(s.Status)).Inc()
	}
}

// ObserveDiagnostics counts per-client failures.
func (m *Metrics) ObserveDiagnostics(diags []contracts.Diagnostic) {
	if m == nil {
		return
	}
	for _, d := range diags {
		m.Diagnostics.WithLabelValues(d.Source).Inc()
	}
}

// ObserveEvaluation records latency and client count of one evaluation.
func (m *Metrics) ObserveEvaluation(clients int, d time.Duration) {
	if m != nil {
		m.ClientsEvaluated.Set(float64(clients))
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementScan records a scheduled scan outcome.
func (m *Metrics) IncrementScan(status string) {
	if m != nil {
		m.ScanRuns.WithLabelValues(status).Inc()
	}
}

// ObserveHTTP records one API request.
func (m *Metrics) ObserveHTTP(route, code string, d time.Duration) {
	if m != nil {
		m.HTTPLatency.WithLabelValues(route, code).Observe(d.Seconds())
	}
}
