package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch/config"
)

// validateCmd validates a config file without polling.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a slotwatch configuration file without polling or sending mail.

This command parses the YAML, expands environment variables, and validates
all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  slotwatch validate -c slotwatch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return errors.New(`required flag(s) "config" not set`)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Locations:     %d\n", len(cfg.Locations))
	if cfg.Before.IsSet() {
		fmt.Fprintf(out, "  Before:        %s\n", cfg.Before.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "  Limit:         %d\n", cfg.Limit)
	fmt.Fprintf(out, "  Request delay: %s\n", cfg.RequestDelay.Duration())
	fmt.Fprintf(out, "  Mail:          %s to %s\n", cfg.Mail.Transport, cfg.Mail.To)
	if cfg.Slack.WebhookURL != "" {
		fmt.Fprintf(out, "  Slack:         enabled\n")
	}
	if len(cfg.Locations) == 0 {
		fmt.Fprintf(out, "  Note: no locations set; pass -l to watch or check\n")
	}
	return nil
}
