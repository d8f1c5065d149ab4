package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <name>",
	Short: "Accept an app's current value as the seen baseline",
	Long: `Re-run the app's checker script and record the freshly observed value as
both the snapshot and the latest value. A snapshot always re-measures; it
never blesses a stale report.

If the check fails, "no value" is snapshotted — explicitly accepting that
an app currently reports nothing is valid.`,
	Example: `  upsnap snapshot jq`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSnapshot,
}

func init() {
	RootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withRegistry(func(reg *registry.Registry) error {
		app, err := reg.Get(name)
		if err != nil {
			return err
		}

		st := openHistory()
		defer closeHistory(st)

		value := newEngine().Measure(context.Background(), app)
		if err := reg.SetSnapshot(name, value); err != nil {
			return err
		}
		record(st, name, value, store.KindSnapshot)

		if value.IsNone() {
			fmt.Printf("✓ Snapshot of `%s` recorded: no value\n", name)
		} else {
			fmt.Printf("✓ Snapshot of `%s` recorded: %s\n", name, value.String())
		}
		return nil
	})
}
