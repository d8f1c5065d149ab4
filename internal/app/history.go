package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/output"
	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history <name>",
		Short: "Show recent observations for an app",
		Long: `Show the most recent values measured for an app, newest first. Every
refresh, snapshot, and watch-triggered check appends to the history.`,
		Example: `  upsnap history jq
  upsnap history jq --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of observations to show")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withRegistry(func(reg *registry.Registry) error {
		if _, err := reg.Get(name); err != nil {
			return err
		}

		dir, err := getDataDir()
		if err != nil {
			return fmt.Errorf("failed to get data directory: %w", err)
		}
		st, err := store.New(filepath.Join(dir, store.FileName))
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer st.Close()
		if err := st.CreateSchema(); err != nil {
			return err
		}

		observations, err := st.ListObservations(name, historyLimit)
		if err != nil {
			return err
		}

		fmt.Printf("\nObservations for `%s`:\n\n", name)
		fmt.Print(output.RenderHistoryTable(observations))
		return nil
	})
}
