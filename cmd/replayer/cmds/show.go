package cmds

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			output, _ := cmd.Flags().GetString("output")

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

			t, found, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return errors.Errorf("session %q not found", args[0])
			}
			return printTranscript(cmd.OutOrStdout(), t, output)
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func printTranscript(w io.Writer, t *transcript.Transcript, output string) error {
	switch output {
	case "json":
		b, err := transcript.MarshalIndent(t)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case "yaml":
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		var v interface{}
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		y, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(y)
		return err

	case "text", "":
		for i, turn := range t.Turns {
			if !transcript.IsEffective(turn) {
				continue
			}
			if err := printTurn(w, i, turn); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.Errorf("unknown output format %q", output)
	}
}

func printTurn(w io.Writer, index int, turn *transcript.Turn) error {
	label := humanStyle.Render("human")
	if turn.Sender != transcript.SenderHuman {
		label = assistantStyle.Render(string(turn.Sender))
	}
	suffix := ""
	if turn.Edited {
		suffix = dimStyle.Render(" (edited)")
	}
	_, err := fmt.Fprintf(w, "%s %s%s\n%s\n\n",
		dimStyle.Render(fmt.Sprintf("[%d]", index)), label, suffix, transcript.ExtractText(turn))
	return err
}
