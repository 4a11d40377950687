package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/scheduler"
	"github.com/wonny/clientwatch/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled client scans",
	Long: `Runs the scan jobs on their cron schedules or on demand.

Registered jobs:
- client_scan: SCAN_SCHEDULE (default daily 07:00). Evaluates the book,
  publishes alerts not in the previous report, stores the report.
- dismissal_prune: Sundays 03:00. Forgets dismissals of alerts that no
  longer fire.

Example:
  go run ./cmd/clientwatch scheduler start
  go run ./cmd/clientwatch scheduler run client_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler (Ctrl+C to stop)",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// schedule is a scheduler with the jobs registered on it
type schedule struct {
	sched *scheduler.Scheduler
	scan  *jobs.ScanJob
	jobs  []scheduler.Job
}

// newScheduler registers the scan and prune jobs
func newScheduler(a *app) (*schedule, error) {
	sink, err := a.sink()
	if err != nil {
		return nil, err
	}

	scan := jobs.NewScanJob(jobs.ScanDeps{
		Source:     a.store,
		Monitor:    a.monitor,
		Dismissals: a.dismissals,
		Sink:       sink,
		Reports:    a.reports(),
		Metrics:    a.metrics,
		Logger:     a.log,
	}, a.cfg.ScanSchedule)
	prune := jobs.NewDismissalPruneJob(a.store, a.monitor, a.dismissals, a.log)

	s := &schedule{
		sched: scheduler.New(a.log, scheduler.WithRetry(2, 30*time.Second)),
		scan:  scan,
		jobs:  []scheduler.Job{scan, prune},
	}
	for _, job := range s.jobs {
		if err := s.sched.AddJob(job); err != nil {
			return nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}
	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	s.sched.Start()
	defer s.sched.Stop()

	out := cmd.OutOrStdout()
	printSuccess(out, "Scheduler started")
	for _, name := range s.sched.GetAllJobs() {
		next, _ := s.sched.NextRun(name)
		printKeyValue(out, name, "next run "+next.Format(time.RFC3339), 16)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()
	a.log.Info("Stopping scheduler")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		rows = append(rows, []string{job.Name(), job.Schedule()})
	}
	printTable(cmd.OutOrStdout(), []string{"JOB", "SCHEDULE"}, rows)
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := s.sched.RunJob(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return printJSON(out, result)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error)
	}
	printSuccess(out, fmt.Sprintf("Job %s completed in %s", result.JobName, result.Duration.Round(time.Millisecond)))
	return nil
}
