package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/clientstore"
)

// clientCmd represents the client command
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
	Long: `Inactive clients are skipped by every evaluation until reactivated.

Example:
  go run ./cmd/clientwatch client deactivate c-104
  go run ./cmd/clientwatch client inactive
  CLIENT_SOURCE=postgres go run ./cmd/clientwatch client import data/clients.json`,
}

var (
	clientDeactivateCmd = &cobra.Command{
		Use:   "deactivate [client_id]",
		Short: "Exclude a client from evaluation",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientDeactivate,
	}

	clientReactivateCmd = &cobra.Command{
		Use:   "reactivate [client_id]",
		Short: "Return a client to evaluation",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientReactivate,
	}

	clientInactiveCmd = &cobra.Command{
		Use:   "inactive",
		Short: "List inactive clients",
		RunE:  runClientInactive,
	}

	clientImportCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Upsert clients from a JSON file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientImport,
	}
)

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientDeactivateCmd)
	clientCmd.AddCommand(clientReactivateCmd)
	clientCmd.AddCommand(clientInactiveCmd)
	clientCmd.AddCommand(clientImportCmd)
}

func runClientDeactivate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.store.Get(ctx, args[0])
	if errors.Is(err, clientstore.ErrNotFound) {
		return fmt.Errorf("client %q not found", args[0])
	}
	if err != nil {
		return err
	}

	if err := a.dismissals.Deactivate(ctx, client.ID, client.Name); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deactivated %s (%s)", client.Name, client.ID))
	return nil
}

func runClientReactivate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dismissals.Reactivate(ctx, args[0]); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Reactivated "+args[0])
	return nil
}

func runClientInactive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := a.dismissals.InactiveClientNames(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return printJSON(out, names)
	}
	if len(names) == 0 {
		printInfo(out, "No inactive clients")
		return nil
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id, names[id]})
	}
	printTable(out, []string{"ID", "NAME"}, rows)
	return nil
}

func runClientImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	clients, err := clientstore.Decode(data)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	w, ok := a.store.(clientstore.Writer)
	if !ok {
		return fmt.Errorf("client import requires CLIENT_SOURCE=postgres")
	}
	n, err := w.Upsert(ctx, clients)
	if err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"file":    args[0],
		"clients": n,
	}).Info("Clients imported")
	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Imported %d clients", n))
	return nil
}
