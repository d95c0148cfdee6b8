package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/config"
)

// locationsCmd lists the enrollment locations and their ids.
var locationsCmd = &cobra.Command{
	Use:   "locations [filter]",
	Short: "List enrollment locations and their ids",
	Long: `List every operational enrollment location with the id to pass to -l.

An optional filter keeps only locations whose label contains it,
ignoring case.

Example:
  slotwatch locations
  slotwatch locations seattle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	mapping, err := config.BuildAPI(cfg).Locations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch locations: %w", err)
	}

	var filter string
	if len(args) == 1 {
		filter = strings.ToLower(args[0])
	}

	ids := make([]slotwatch.LocationID, 0, len(mapping))
	for id, label := range mapping {
		if filter == "" || strings.Contains(strings.ToLower(label), filter) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, id := range ids {
		fmt.Fprintf(tw, "%d\t%s\n", id, mapping[id])
	}
	return tw.Flush()
}
