package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/config"
)

// watchCmd polls until a timeslot is found.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll until an open timeslot is found, then notify",
	Long: `Poll every location round after round until any of them reports an
open timeslot, then email the findings and exit.

A jittered pause of about two seconds follows every request. There is no
round limit; press Ctrl+C to stop.

Example:
  slotwatch watch -l 5446 -l 5020 --before 2024-06-01
  slotwatch watch -c slotwatch.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPoll(cmd, true)
	},
}

// checkCmd polls once.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll every location once and notify with the result",
	Long: `Poll every location once and email whatever was found. When nothing is
found the email says so, unless --silent is given.

Suited to cron:
  */15 * * * * slotwatch check -l 5446 --silent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPoll(cmd, false)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{watchCmd, checkCmd} {
		rootCmd.AddCommand(cmd)

		cmd.Flags().IntSliceP("location-ids", "l", nil, "location ids to check (repeatable or comma separated)")
		cmd.Flags().String("before", "", "only report timeslots before this date (YYYY-MM-DD)")
		cmd.Flags().Int("limit", 0, "appointments to fetch per location (default 10)")
		cmd.Flags().Bool("silent", false, "do not notify when nothing is found")
		cmd.Flags().String("calendar", "", "also write found timeslots to this iCalendar file")
	}
}

// loadConfig reads the config file given by -c, or the environment when
// there is none, then applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.FromEnv()
	}

	flags := cmd.Flags()
	if flags.Changed("location-ids") {
		ids, _ := flags.GetIntSlice("location-ids")
		cfg.Locations = ids
	}
	if flags.Changed("before") {
		s, _ := flags.GetString("before")
		before, err := slotwatch.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --before %q, want YYYY-MM-DD: %w", s, err)
		}
		cfg.Before = config.Date{Time: before}
	}
	if flags.Changed("limit") {
		cfg.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("silent") {
		cfg.Silent, _ = flags.GetBool("silent")
	}
	if flags.Changed("calendar") {
		cfg.Calendar.Path, _ = flags.GetString("calendar")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Locations) == 0 {
		return nil, errors.New("no location ids given; use -l or set locations in the config file")
	}
	return cfg, nil
}

func runPoll(cmd *cobra.Command, untilFound bool) error {
	logger := newLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := config.BuildOptions(cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return fmt.Errorf("failed to build notifier: %w", err)
	}
	w, err := slotwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var report *slotwatch.Report
	if untilFound {
		report, err = w.Watch(ctx)
	} else {
		report, err = w.Check(ctx)
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted", "rounds", report.Rounds)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("done",
		slog.String("run_id", report.RunID),
		slog.Int("rounds", report.Rounds),
		slog.Bool("notified", report.Notified),
	)
	return nil
}
