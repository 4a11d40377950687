package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/pkg/logger"
)

// DismissalPruneJob drops dismissed alert ids that the engine no longer
// produces, e.g. last year's birthday.
type DismissalPruneJob struct {
	source     contracts.ClientSource
	monitor    *monitor.Monitor
	dismissals *dismissal.Store
	logger     *logger.Logger
}

// NewDismissalPruneJob creates a new prune job
func NewDismissalPruneJob(source contracts.ClientSource, m *monitor.Monitor, d *dismissal.Store, log *logger.Logger) *DismissalPruneJob {
	if log == nil {
		log = logger.Nop()
	}
	return &DismissalPruneJob{
		source:     source,
		monitor:    m,
		dismissals: d,
		logger:     log,
	}
}

// Name returns the job name
func (j *DismissalPruneJob) Name() string {
	return "dismissal_prune"
}

// Schedule returns the cron schedule (Sundays at 03:00)
func (j *DismissalPruneJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run executes the prune
func (j *DismissalPruneJob) Run(ctx context.Context) error {
	clients, err := j.source.List(ctx)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}

	res, err := j.monitor.EvaluateAlerts(ctx, clients, monitor.Options{})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	current := make(map[string]bool, len(res.Alerts))
	for _, a := range res.Alerts {
		current[a.ID] = true
	}

	removed, err := j.dismissals.PruneDismissed(ctx, current)
	if err != nil {
		return fmt.Errorf("prune dismissals: %w", err)
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Stale dismissals pruned")
	}
	return nil
}
