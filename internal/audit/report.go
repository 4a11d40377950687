package audit

import (
	"errors"
	"time"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/monitor"
)

// ErrNoReport is returned when no scan report has been stored yet
var ErrNoReport = errors.New("no scan report available")

// ScanReport is the stored outcome of one scheduled scan.
// AsOf, ConfigHash and Version are enough to reproduce it.
// ⭐ SSOT: 스캔 결과 감사 기록 형식은 여기서만
type ScanReport struct {
	RunID       string                     `json:"run_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	AsOf        calendar.Date              `json:"as_of"`
	ConfigHash  string                     `json:"config_hash"`
	Version     string                     `json:"version"`
	ClientCount int                        `json:"client_count"`
	Alerts      []contracts.Alert          `json:"alerts"`
	Summary     contracts.AlertSummary     `json:"summary"`
	Portfolio   contracts.PortfolioSummary `json:"portfolio"`
	Diagnostics []contracts.Diagnostic     `json:"diagnostics"`
}

// NewScanReport builds a report from an evaluation result
func NewScanReport(runID string, generatedAt time.Time, res *monitor.Result, alerts []contracts.Alert) *ScanReport {
	return &ScanReport{
		RunID:       runID,
		GeneratedAt: generatedAt.UTC(),
		AsOf:        res.AsOf,
		ConfigHash:  res.ConfigHash,
		Version:     res.Version,
		ClientCount: len(res.Scores),
		Alerts:      alerts,
		Summary:     res.Summary,
		Portfolio:   res.Portfolio,
		Diagnostics: res.Diagnostics,
	}
}

// NewAlerts returns the visible alerts of cur whose ids were not in prev.
// A nil prev treats every visible alert as new.
func NewAlerts(prev *ScanReport, cur []contracts.Alert) []contracts.Alert {
	seen := map[string]bool{}
	if prev != nil {
		for _, a := range prev.Alerts {
			seen[a.ID] = true
		}
	}

	out := []contracts.Alert{}
	for _, a := range cur {
		if !a.Dismissed && !seen[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
