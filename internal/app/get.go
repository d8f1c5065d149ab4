package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Measure and print an app's current value",
	Long: `Run the app's checker script right now and print the observed value to
stdout. The measurement is stored as the app's latest value; the snapshot
is untouched. A failed check prints NONE.`,
	Example: `  upsnap get jq
  upsnap get jq --timeout 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	RootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withRegistry(func(reg *registry.Registry) error {
		app, err := reg.Get(name)
		if err != nil {
			return err
		}

		st := openHistory()
		defer closeHistory(st)

		value := newEngine().Measure(context.Background(), app)
		if err := reg.SetLatest(name, value); err != nil {
			return err
		}
		record(st, name, value, store.KindRefresh)

		if value.IsNone() {
			fmt.Println("NONE")
		} else {
			fmt.Println(value.String())
		}
		return nil
	})
}
