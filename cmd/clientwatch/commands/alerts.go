package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/internal/service"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List client alerts",
	Long: `Evaluates the client book and lists alerts ordered by priority,
then by due date.

Dismissed alerts are hidden unless --include-dismissed is set; inactive
clients are never evaluated.

Example:
  go run ./cmd/clientwatch alerts
  go run ./cmd/clientwatch alerts --type birthday,policy_renewal
  go run ./cmd/clientwatch alerts --urgent --output json`,
	RunE: runAlerts,
}

var (
	alertTypes       string
	alertPriorities  string
	alertClient      string
	alertUrgent      bool
	alertDueToday    bool
	includeDismissed bool
)

func init() {
	rootCmd.AddCommand(alertsCmd)

	// Flags
	alertsCmd.Flags().StringVar(&alertTypes, "type", "", "comma-separated alert types")
	alertsCmd.Flags().StringVar(&alertPriorities, "priority", "", "comma-separated priorities (urgent,high,medium,low)")
	alertsCmd.Flags().StringVar(&alertClient, "client", "", "only alerts for this client id")
	alertsCmd.Flags().BoolVar(&alertUrgent, "urgent", false, "urgent and high priority only")
	alertsCmd.Flags().BoolVar(&alertDueToday, "due-today", false, "alerts due on the as-of date only")
	alertsCmd.Flags().BoolVar(&includeDismissed, "include-dismissed", false, "show dismissed alerts")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	types, err := alerts.ParseTypes(alertTypes)
	if err != nil {
		return err
	}
	priorities, err := alerts.ParsePriorities(alertPriorities)
	if err != nil {
		return err
	}
	filter := alerts.Filter{
		Types:      types,
		Priorities: priorities,
		ClientID:   alertClient,
		UrgentOnly: alertUrgent,
		DueToday:   alertDueToday,
		Visible:    !includeDismissed,
	}

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

	selected := filter.Apply(res.Alerts)
	out := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return printJSON(out, map[string]interface{}{
			"as_of":       res.AsOf,
			"config_hash": res.ConfigHash,
			"count":       len(selected),
			"alerts":      selected,
			"diagnostics": res.Diagnostics,
		})
	}

	printAlerts(out, res, selected)
	return nil
}

func printAlerts(w io.Writer, res *monitor.Result, selected []contracts.Alert) {
	printHeader(w, "Client Alerts", "As of "+res.AsOf.String())
	if len(selected) == 0 {
		printInfo(w, "No alerts")
		return
	}

	rows := make([][]string, 0, len(selected))
	for _, a := range selected {
		rows = append(rows, []string{priorityLabel(a), dueLabel(a), a.ClientName, a.Title})
	}
	printTable(w, []string{"PRIORITY", "DUE", "CLIENT", "ALERT"}, rows)

	fmt.Fprintln(w)
	s := alerts.Summarize(service.Outstanding(selected))
	fmt.Fprintf(w, "%d outstanding: %d urgent, %d high, %d medium, %d low (%d overdue)\n",
		s.Total,
		s.ByPriority[contracts.PriorityUrgent], s.ByPriority[contracts.PriorityHigh],
		s.ByPriority[contracts.PriorityMedium], s.ByPriority[contracts.PriorityLow],
		s.Overdue)
	if n := len(res.Diagnostics); n > 0 {
		printWarning(w, fmt.Sprintf("%d record problems skipped (use --verbose for details)", n))
	}
}
