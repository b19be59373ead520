package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, s)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			deleted, err := store.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", dimStyle.Render(fmt.Sprintf("No session named %q", args[0])))
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render("Deleted"), args[0])
			return err
		},
	}
}
