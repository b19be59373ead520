package cmds

import (
	"fmt"
	"os"
	"time"

	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported chat transcript as a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, _ := cmd.Flags().GetString("name")

			b, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "could not read %s", args[0])
			}
			t, err := transcript.Parse(b)
			if err != nil {
				return err
			}
			if name == "" {
				name = sessions.SuggestName(time.Now())
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

			if err := store.Save(ctx, name, t); err != nil {
				return err
			}
			log.Debug().Str("session", name).Int("turns", t.Len()).Msg("Imported transcript")

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d turns, %d with text)\n",
				titleStyle.Render("Imported"), name, t.Len(), len(transcript.EffectiveTurns(t)))
			return err
		},
	}
	cmd.Flags().String("name", "", "Session name (default: Chat <current time>)")
	return cmd
}
