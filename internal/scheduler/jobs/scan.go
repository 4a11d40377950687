package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/clientwatch/internal/audit"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/metrics"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/pkg/logger"
)

// ScanJob evaluates the whole client book, publishes alerts that were not
// in the previous report and stores the new report.
type ScanJob struct {
	source     contracts.ClientSource
	monitor    *monitor.Monitor
	dismissals *dismissal.Store
	sink       contracts.AlertSink
	reports    audit.ReportStore
	metrics    *metrics.Metrics
	logger     *logger.Logger
	schedule   string
	clock      func() time.Time
}

// ScanDeps groups the collaborators of a ScanJob
type ScanDeps struct {
	Source     contracts.ClientSource
	Monitor    *monitor.Monitor
	Dismissals *dismissal.Store
	Sink       contracts.AlertSink
	Reports    audit.ReportStore
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(deps ScanDeps, schedule string) *ScanJob {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &ScanJob{
		source:     deps.Source,
		monitor:    deps.Monitor,
		dismissals: deps.Dismissals,
		sink:       deps.Sink,
		reports:    deps.Reports,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		schedule:   schedule,
		clock:      time.Now,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "client_scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Reports returns the store scan reports are saved to
func (j *ScanJob) Reports() audit.ReportStore {
	return j.reports
}

// Run executes the scan
func (j *ScanJob) Run(ctx context.Context) error {
	report, err := j.Scan(ctx)
	if err != nil {
		j.metrics.IncrementScan("failed")
		return err
	}
	j.metrics.IncrementScan("success")

	j.logger.WithFields(map[string]interface{}{
		"run_id":  report.RunID,
		"as_of":   report.AsOf.String(),
		"clients": report.ClientCount,
		"alerts":  len(report.Alerts),
	}).Info("Client scan completed")
	return nil
}

// Scan runs one scan and returns the stored report
func (j *ScanJob) Scan(ctx context.Context) (*audit.ScanReport, error) {
	runID := uuid.NewString()
	log := j.logger.WithField("run_id", runID)

	clients, err := j.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	inactive, err := j.dismissals.InactiveClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inactive clients: %w", err)
	}
	clients = dismissal.ExcludeInactive(clients, inactive)

	res, err := j.monitor.Evaluate(ctx, clients, monitor.Options{})
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	visible, err := j.dismissals.Apply(ctx, res.Alerts)
	if err != nil {
		return nil, fmt.Errorf("apply dismissals: %w", err)
	}

	prev, err := j.reports.Latest(ctx)
	if err != nil && !errors.Is(err, audit.ErrNoReport) {
		log.WithError(err).Warn("Previous report unavailable, publishing all alerts")
	}

	report := audit.NewScanReport(runID, j.clock(), res, visible)

	fresh := audit.NewAlerts(prev, visible)
	if err := j.sink.Publish(ctx, fresh); err != nil {
		return nil, fmt.Errorf("publish alerts: %w", err)
	}
	log.WithField("published", len(fresh)).Debug("Alerts published")

	if err := j.reports.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	return report, nil
}
