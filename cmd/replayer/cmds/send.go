package cmds

import (
	"context"
	"fmt"
	"os"

	"github.com/go-go-golems/replayer/pkg/claude"
	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/exchange"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <name> <message>",
		Short: "Continue a saved session with a new message",
		Long: "Send the session's history plus a new message to the Anthropic API.\n" +
			"The message and the reply are appended and the session is saved under <name>.\n" +
			"A session that does not exist yet is started empty.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, text := args[0], args[1]
			model, _ := cmd.Flags().GetString("model")

			s, err := loadSettings()
			if err != nil {
				return err
			}
			credential, err := resolveCredential(credentialFlagsFromCobra(cmd), true)
			if err != nil {
				return err
			}
			if credential.IsZero() {
				return errors.New("an Anthropic API key is required (--api-key, --api-key-file or $REPLAYER_API_KEY)")
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
				log.Info().Str("session", name).Msg("Starting a new session")
			}
			sess := exchange.NewSession(name, t)

			remote, err := claude.NewRemote(s.Claude)
			if err != nil {
				return err
			}

			return withEventRouter(ctx, os.Stderr, func(ctx context.Context, sinks ...events.EventSink) error {
				coordinator, err := exchange.NewCoordinator(remote,
					exchange.WithStore(store),
					exchange.WithEventSinks(sinks...),
					exchange.WithDefaultModel(s.Claude.Model),
					exchange.WithMaxTokens(s.Claude.MaxTokens),
				)
				if err != nil {
					return err
				}

				res, err := coordinator.SendTurn(ctx, credential, sess, text, model)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(w, "%s\n%s\n", assistantStyle.Render("assistant"), res.AssistantText); err != nil {
					return err
				}
				if !res.Persisted {
					_, err = fmt.Fprintln(w, errorStyle.Render("warning: the session could not be saved"))
				}
				return err
			})
		},
	}
	cmd.Flags().String("model", "", "Model to use (default claude.model)")
	addCredentialFlags(cmd)
	return cmd
}
