package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/output"
	"github.com/blackwell-systems/upsnap/internal/refresh"
	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

var (
	dataDirFlag string
	timeoutFlag time.Duration
	jobsFlag    int

	// RootCmd is the root command for upsnap. Running it without a
	// subcommand refreshes every tracked app and prints the report.
	RootCmd = &cobra.Command{
		Use:   "upsnap",
		Short: "Track value changes of apps via checker scripts",
		Long: `upsnap tracks the current known value (typically a version string) of a
set of apps. Each app is paired with a checker script you own: an
executable that prints the app's current value to stdout and exits zero.

upsnap keeps two values per app — the snapshot you last accepted as seen,
and the latest observed value. When they differ, an update is pending.
Running upsnap with no arguments re-runs every checker concurrently and
prints the report; a failing checker records "no value" for that app and
never blocks the others.

Quick Start:
  1. upsnap insert jq ~/checks/jq.sh
  2. upsnap                       # refresh and review
  3. upsnap snapshot jq           # accept the current value`,
		Example: `  # Refresh all apps and print the report
  upsnap

  # Register an app with its checker script
  upsnap insert jq ~/checks/jq.sh

  # Accept the current value as seen
  upsnap snapshot jq

  # Print the current value of one app
  upsnap get jq`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRefresh,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: platform data dir, e.g. ~/.local/share/upsnap)")
	RootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "per-script timeout; a timed-out check records no value")
	RootCmd.PersistentFlags().IntVar(&jobsFlag, "jobs", refresh.DefaultWorkers, "maximum number of concurrent checker scripts")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func runRefresh(cmd *cobra.Command, args []string) error {
	return withRegistry(func(reg *registry.Registry) error {
		st := openHistory()
		defer closeHistory(st)

		newEngine().RefreshAll(context.Background(), reg)

		apps := reg.All()
		for _, app := range apps {
			record(st, app.Name, app.Latest, store.KindRefresh)
		}

		fmt.Println()
		fmt.Print(output.RenderAppTable(apps))
		return nil
	})
}
