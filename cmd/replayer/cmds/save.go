package cmds

import (
	"context"
	"fmt"

	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <from> <to>",
		Short: "Save a copy of a session under a new name",
		Long:  "Loads the session <from> and saves its transcript as <to>, overwriting any session already named <to>.",
		Args:  cobra.ExactArgs(2),
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

			to, err := saveSessionAs(ctx, store, args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render("Saved"), to)
			return err
		},
	}
}

// saveSessionAs copies the transcript stored under from to the name to and
// returns the normalized target name.
func saveSessionAs(ctx context.Context, store sessions.Store, from string, to string) (string, error) {
	name, err := sessions.NormalizeName(to)
	if err != nil {
		return "", err
	}
	t, found, err := store.Load(ctx, from)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Errorf("no session named %q", from)
	}
	if err := store.Save(ctx, name, t); err != nil {
		return "", err
	}
	return name, nil
}
