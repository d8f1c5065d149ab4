package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/upsnap/internal/registry"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop tracking an app",
	Long: `Remove an app from the registry. Its checker script is left untouched;
only upsnap's tracking state and observation history are deleted.`,
	Example: `  upsnap remove jq`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	RootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withRegistry(func(reg *registry.Registry) error {
		if err := reg.Remove(name); err != nil {
			return err
		}

		// History cleanup is best-effort: the registry entry is gone
		// either way.
		if st := openHistory(); st != nil {
			if err := st.DeleteObservations(name); err != nil {
				fmt.Printf("warning: failed to delete history for %s: %v\n", name, err)
			}
			closeHistory(st)
		}

		fmt.Printf("✓ Removed `%s`\n", name)
		return nil
	})
}
