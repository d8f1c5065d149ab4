package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/registry"
)

var insertCmd = &cobra.Command{
	Use:   "insert <name> <script>",
	Short: "Register an app with its checker script",
	Long: `Register an app under the given name, measured by the given checker
script. The script path is resolved to an absolute canonical path and must
exist; registering fails otherwise.

Re-inserting an existing name replaces its script and resets both stored
values — the app starts over with no snapshot and no latest value.`,
	Example: `  upsnap insert jq ~/checks/jq.sh
  upsnap insert neovim /opt/checks/nvim-release`,
	Args: cobra.ExactArgs(2),
	RunE: runInsert,
}

func init() {
	RootCmd.AddCommand(insertCmd)
}

func runInsert(cmd *cobra.Command, args []string) error {
	name, script := args[0], args[1]

	return withRegistry(func(reg *registry.Registry) error {
		if err := reg.Insert(name, script); err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}

		app, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Registered `%s` (%s)\n", name, app.ScriptPath)
		fmt.Printf("  Run 'upsnap snapshot %s' to record its current value.\n", name)
		return nil
	})
}
