package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/datafile"
	"github.com/blackwell-systems/upsnap/internal/registry"
	"github.com/blackwell-systems/upsnap/internal/store"
	"github.com/blackwell-systems/upsnap/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-measure apps as their checker scripts change",
	Long: `Watch the checker scripts of all registered apps and re-measure an app
whenever its script is modified. Useful while writing or tuning a checker:
save the script and see the freshly observed value immediately.

Runs until interrupted (Ctrl-C). The registry is saved after every
triggered measurement and again on shutdown.`,
	Example: `  upsnap watch`,
	Args:    cobra.NoArgs,
	RunE:    runWatch,
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := getDataDir()
	if err != nil {
		return fmt.Errorf("failed to get data directory: %w", err)
	}
	path := filepath.Join(dir, datafile.FileName)

	reg, err := datafile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if reg.Len() == 0 {
		return fmt.Errorf("no apps registered; add one with 'upsnap insert <name> <script>'")
	}

	st := openHistory()
	defer closeHistory(st)

	engine := newEngine()
	w, err := watcher.New(reg, engine, func(app *registry.App) {
		record(st, app.Name, app.Latest, store.KindWatch)
		if err := datafile.Save(path, reg); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save registry: %v\n", err)
		}

		latest := "NONE"
		if !app.Latest.IsNone() {
			latest = app.Latest.String()
		}
		marker := "✓"
		if !app.UpToDate() {
			marker = "!"
		}
		fmt.Printf("%s %s → %s\n", marker, app.Name, latest)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %d checker script(s). Press Ctrl-C to stop.\n", reg.Len())

	runErr := w.Run(ctx)

	// Final best-effort save on the shutdown path; never masks a watch
	// error.
	if err := datafile.Save(path, reg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save registry: %v\n", err)
	}
	return runErr
}
