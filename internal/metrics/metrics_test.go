package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/clientwatch/internal/contracts"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ObserveAlerts([]contracts.Alert{
		{Type: contracts.AlertBirthday, Priority: contracts.PriorityHigh},
		{Type: contracts.AlertBirthday, Priority: contracts.PriorityHigh},
		{Type: contracts.AlertNoContact, Priority: contracts.PriorityMedium},
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsGenerated.WithLabelValues("birthday", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsGenerated.WithLabelValues("no_contact", "medium")))

	m.ObserveScores([]contracts.ComplianceScore{{Status: contracts.StatusAtRisk}})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComplianceStatus.WithLabelValues(string(contracts.StatusAtRisk))))

	m.ObserveDiagnostics([]contracts.Diagnostic{{Source: "birthday"}})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("birthday")))

	m.ObserveEvaluation(42, 10*time.Millisecond)
	assert.Equal(t, 42.0, testutil.ToFloat64(m.ClientsEvaluated))

	m.IncrementScan("success")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanRuns.WithLabelValues("success")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAlerts([]contracts.Alert{{}})
		m.ObserveScores(nil)
		m.ObserveDiagnostics(nil)
		m.ObserveEvaluation(1, time.Second)
		m.IncrementScan("failed")
		m.ObserveHTTP("/health", "200", time.Millisecond)
	})
}
