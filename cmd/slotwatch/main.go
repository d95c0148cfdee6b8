// Package main is the entry point for the slotwatch CLI.
//
// Usage:
//
//	slotwatch watch -l 5446 -l 5020 --before 2024-06-01   # poll until a slot opens
//	slotwatch check -l 5446 --silent                     # one round, for cron
//	slotwatch locations                                  # list location ids
//	slotwatch validate -c slotwatch.yaml                 # validate configuration
//	slotwatch version                                    # show version info
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "Watch for open Global Entry interview timeslots",
	Long: `slotwatch polls the Trusted Traveler Programs scheduler for open
interview timeslots at the locations you choose and emails you when one
appears.

Settings come from a YAML file (-c) or, without one, from the environment:
  SEND_FROM, SEND_TO      email sender and recipient
  APP_PASS                SMTP app password (Gmail by default)
  SENDGRID_API_KEY        use SendGrid instead of SMTP
  SLACK_WEBHOOK_URL       also post to Slack
A .env file in the working directory is loaded first when present.

Quick start:
  slotwatch locations | grep -i seattle
  slotwatch watch -l 5446 --before 2024-06-01`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(".env")
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this slotwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "slotwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (default: read the environment)")
	rootCmd.PersistentFlags().Bool("debug", false, "log every request")
}

// newLogger creates a JSON logger for CLI use.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
}

// loadDotEnv loads path into the environment. Variables already set win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
