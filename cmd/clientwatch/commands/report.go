package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/compliance"
	"github.com/wonny/clientwatch/internal/service"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Consumer Duty compliance report (markdown)",
	Long: `Renders the portfolio compliance summary as a markdown report:
compliance rate, status breakdown, common issues and the lowest-scoring
clients.

With --output json the full evaluation result is printed instead.

Example:
  go run ./cmd/clientwatch report > consumer-duty.md`,
	RunE: runReport,
}

// briefingCmd represents the briefing command
var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Daily briefing of outstanding alerts (markdown)",
	RunE:  runBriefing,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(briefingCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	date, _ := asOf()
	res, err := a.svc.Evaluate(ctx, date)
	if err != nil {
		return err
	}

	if outputFormat == outputJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprint(cmd.OutOrStdout(), compliance.ConsumerDutyReport(res.Portfolio, res.AsOf))
	return nil
}

func runBriefing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	date, _ := asOf()
	res, err := a.svc.EvaluateAlerts(ctx, date)
	if err != nil {
		return err
	}

	outstanding := service.Outstanding(res.Alerts)
	if outputFormat == outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"as_of":   res.AsOf,
			"summary": res.Summary,
			"urgent":  alerts.Urgent(outstanding),
			"today":   alerts.DueToday(outstanding),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), alerts.Briefing(outstanding, res.AsOf))
	return nil
}
