package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/api"
	"github.com/wonny/clientwatch/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health                          - Health check
  GET    /metrics                         - Prometheus metrics
  GET    /api/alerts                      - Alerts (type, priority, client, urgent, due_today, include_dismissed, as_of)
  GET    /api/alerts/summary              - Outstanding alert counts
  GET    /api/alerts/briefing             - Daily briefing (markdown)
  POST   /api/alerts/{id}/dismiss         - Dismiss an alert
  DELETE /api/alerts/{id}/dismiss         - Restore an alert
  GET    /api/compliance                  - Compliance scores (status, as_of)
  GET    /api/compliance/report           - Consumer Duty report (markdown)
  GET    /api/compliance/{clientID}       - One client's score
  GET    /api/portfolio                   - Portfolio summary
  GET    /api/clients/inactive            - Inactive clients
  POST   /api/clients/{clientID}/inactive - Deactivate a client
  DELETE /api/clients/{clientID}/inactive - Reactivate a client
  GET    /api/dismissals/stats            - Dismissal counts
  GET    /api/reports/latest              - Latest scan report
  GET    /api/reports/history             - Scan history (needs DATABASE_URL)
  POST   /api/scans                       - Run a scan now

Example:
  go run ./cmd/clientwatch api
  go run ./cmd/clientwatch api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the scheduled scans in this process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	s, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if withScheduler {
		s.sched.Start()
		defer s.sched.Stop()
	}

	var history handlers.HistoryReader
	if repo := a.history(); repo != nil {
		history = repo
	}

	h := api.Handlers{
		Alerts:     handlers.NewAlertHandler(a.svc, a.log),
		Compliance: handlers.NewComplianceHandler(a.svc, a.log),
		Clients:    handlers.NewClientHandler(a.store, a.dismissals, a.log),
		Reports:    handlers.NewReportHandler(s.scan.Reports(), history, s.scan.Scan, a.log),
	}

	opts := api.RouterOptions{
		Metrics:   a.metrics,
		RateLimit: a.cfg.APIRateLimit,
		Burst:     a.cfg.APIBurst,
		Checks: map[string]api.HealthCheck{
			"redis": a.redis.Ping,
		},
	}
	if a.db != nil {
		opts.Checks["database"] = a.db.Ping
	}
	if a.metrics != nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, opts, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
