package cmds

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/exchange"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name> <index> <text>",
		Short: "Replace the text of a recorded turn",
		Long:  "Replace the text of turn <index> (as shown by `show`) and save the session.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, text := args[0], args[2]
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrapf(err, "invalid turn index %q", args[1])
			}

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

			t, found, err := store.Load(ctx, name)
			if err != nil {
				return err
			}
			if !found {
				return errors.Errorf("session %q not found", name)
			}
			sess := exchange.NewSession(name, t)

			return withEventRouter(ctx, os.Stderr, func(ctx context.Context, sinks ...events.EventSink) error {
				editor := exchange.NewEditor(
					exchange.WithStore(store),
					exchange.WithEventSinks(sinks...),
				)
				es, err := editor.Begin(sess, index)
				if err != nil {
					return err
				}
				if err := es.Save(ctx, text); err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				_, err = fmt.Fprintf(w, "%s\n%s\n%s\n%s\n",
					dimStyle.Render("before:"), es.Original(),
					titleStyle.Render("after:"), text)
				return err
			})
		},
	}
}
