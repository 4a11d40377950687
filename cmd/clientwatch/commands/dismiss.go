package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/scheduler/jobs"
)

// dismissCmd represents the dismiss command
var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Manage dismissed alerts",
	Long: `Dismissed alert ids are stored in Redis when REDIS_ENABLED=true,
otherwise in DISMISSALS_FILE. Recurring alerts carry the year in their id,
so dismissing this year's birthday does not hide next year's.

Example:
  go run ./cmd/clientwatch dismiss add bday-c-104-2026
  go run ./cmd/clientwatch dismiss list`,
}

var (
	dismissAddCmd = &cobra.Command{
		Use:   "add [alert_id...]",
		Short: "Dismiss alerts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDismissAdd,
	}

	dismissRemoveCmd = &cobra.Command{
		Use:   "remove [alert_id...]",
		Short: "Restore dismissed alerts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDismissRemove,
	}

	dismissListCmd = &cobra.Command{
		Use:   "list",
		Short: "List dismissed alert ids and dismissal stats",
		RunE:  runDismissList,
	}

	dismissPruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Forget dismissals for alerts that no longer fire",
		RunE:  runDismissPrune,
	}

	dismissResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Clear all dismissals and inactive clients",
		RunE:  runDismissReset,
	}
)

var resetConfirm bool

func init() {
	rootCmd.AddCommand(dismissCmd)
	dismissCmd.AddCommand(dismissAddCmd)
	dismissCmd.AddCommand(dismissRemoveCmd)
	dismissCmd.AddCommand(dismissListCmd)
	dismissCmd.AddCommand(dismissPruneCmd)
	dismissCmd.AddCommand(dismissResetCmd)

	dismissResetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")
}

func runDismissAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range args {
		if err := a.dismissals.DismissAlert(ctx, id); err != nil {
			return fmt.Errorf("dismiss %s: %w", id, err)
		}
		printSuccess(cmd.OutOrStdout(), "Dismissed "+id)
	}
	return nil
}

func runDismissRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range args {
		if err := a.dismissals.RestoreAlert(ctx, id); err != nil {
			return fmt.Errorf("restore %s: %w", id, err)
		}
		printSuccess(cmd.OutOrStdout(), "Restored "+id)
	}
	return nil
}

func runDismissList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	dismissed, err := a.dismissals.DismissedAlerts(ctx)
	if err != nil {
		return err
	}
	stats, err := a.dismissals.Stats(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(dismissed))
	for id := range dismissed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return printJSON(out, map[string]interface{}{
			"dismissed_alerts": ids,
			"stats":            stats,
		})
	}

	printHeader(out, "Dismissals", "")
	printKeyValue(out, "Dismissed alerts", fmt.Sprintf("%d", stats.DismissedAlerts), 16)
	printKeyValue(out, "Inactive clients", fmt.Sprintf("%d", stats.InactiveClients), 16)
	for _, id := range ids {
		fmt.Fprintf(out, "   • %s\n", id)
	}
	return nil
}

func runDismissPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	job := jobs.NewDismissalPruneJob(a.store, a.monitor, a.dismissals, a.log)
	if err := job.Run(ctx); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Pruned dismissals for alerts that no longer fire")
	return nil
}

func runDismissReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return fmt.Errorf("reset clears every dismissal and inactive client; pass --yes to confirm")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dismissals.Reset(ctx); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Dismissals reset")
	return nil
}
