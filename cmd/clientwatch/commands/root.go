package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/calendar"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var (
	// Global flags
	asOfFlag     string
	clientsFile  string
	engineConfig string
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clientwatch",
	Short: "Client relationship alerts and Consumer Duty compliance",
	Long: `clientwatch scans a financial adviser's client book.

It raises prioritized alerts (birthdays, renewals, overdue follow-ups,
reviews, lapsed contact) and scores each client against Consumer Duty
compliance factors.

Usage:
  go run ./cmd/clientwatch [command]

Examples:
  go run ./cmd/clientwatch alerts --urgent
  go run ./cmd/clientwatch compliance --output json
  go run ./cmd/clientwatch briefing --as-of 2026-10-19
  go run ./cmd/clientwatch api`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != outputText && outputFormat != outputJSON {
			return fmt.Errorf("--output must be %q or %q", outputText, outputJSON)
		}
		if _, err := asOf(); err != nil {
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// SIGINT/SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&asOfFlag, "as-of", "", "evaluation date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&clientsFile, "clients", "", "client JSON file (overrides CLIENTS_FILE)")
	rootCmd.PersistentFlags().StringVar(&engineConfig, "engine-config", "", "engine YAML config (overrides ENGINE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// asOf parses --as-of; zero means today on the monitor clock
func asOf() (calendar.Date, error) {
	if asOfFlag == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.Parse(asOfFlag)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid --as-of: %w", err)
	}
	return d, nil
}
