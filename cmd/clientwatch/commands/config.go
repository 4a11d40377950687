package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/clientwatch/internal/engineconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Engine configuration tools",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate an engine config and print its hash",
	Long: `Loads the engine YAML over the defaults, validates it and prints
non-fatal warnings and the config hash recorded in scan reports.

Without a path, --engine-config or ENGINE_CONFIG is used; with neither,
the defaults are checked.

Example:
  go run ./cmd/clientwatch config check config/engine.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := engineConfig
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := engineconfig.LoadOrDefault(path)
	if err != nil {
		return err
	}
	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}
	warnings := engineconfig.Warn(cfg)

	out := cmd.OutOrStdout()
	if outputFormat == outputJSON {
		return printJSON(out, map[string]interface{}{
			"path":     path,
			"valid":    true,
			"hash":     hash,
			"warnings": warnings,
			"config":   cfg,
		})
	}

	source := path
	if source == "" {
		source = "(defaults)"
	}
	printSuccess(out, "Engine config is valid: "+source)
	printKeyValue(out, "Hash", hash, 6)
	for _, w := range warnings {
		printWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}
