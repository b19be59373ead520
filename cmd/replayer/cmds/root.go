package cmds

import (
	"context"
	"io"

	"github.com/go-go-golems/glazed/pkg/cli"
	glazedcmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/settings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// timestampLayout renders times in structured output.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		NewImportCommand(),
		NewShowCommand(),
		NewDeleteCommand(),
		NewSaveCommand(),
		NewSendCommand(),
		NewEditCommand(),
	)

	listCmd, err := NewListCommand()
	cobra.CheckErr(err)
	listCobraCmd, err := buildGlazeCommand(listCmd)
	cobra.CheckErr(err)
	rootCmd.AddCommand(listCobraCmd)

	modelsCmd, err := NewModelsCommand()
	cobra.CheckErr(err)
	modelsCobraCmd, err := buildGlazeCommand(modelsCmd)
	cobra.CheckErr(err)
	rootCmd.AddCommand(modelsCobraCmd)
}

func buildGlazeCommand(cmd glazedcmds.GlazeCommand) (*cobra.Command, error) {
	return cli.BuildCobraCommandFromGlazeCommand(cmd,
		cli.WithCobraMiddlewaresFunc(glazeMiddlewares),
	)
}

func glazeMiddlewares(
	_ *cli.GlazedCommandSettings,
	cmd *cobra.Command,
	args []string,
) ([]middlewares.Middleware, error) {
	return []middlewares.Middleware{
		middlewares.ParseFromCobraCommand(cmd,
			parameters.WithParseStepSource("cobra"),
		),
		middlewares.GatherArguments(args,
			parameters.WithParseStepSource("arguments"),
		),
		middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
	}, nil
}

func loadSettings() (*settings.Settings, error) {
	return settings.LoadFromViper(viper.GetViper())
}

func openStore(ctx context.Context, s *settings.Settings) (sessions.Store, error) {
	return sessions.Open(ctx, s.Store)
}

// withEventRouter runs fn, and when --print-events is set, an event router
// printing every published event to w alongside it.
func withEventRouter(ctx context.Context, w io.Writer, fn func(ctx context.Context, sinks ...events.EventSink) error) error {
	if !viper.GetBool("print-events") {
		return fn(ctx)
	}

	router, err := events.NewEventRouter(events.WithVerbose(viper.GetBool("verbose")))
	if err != nil {
		return err
	}
	defer func() {
		_ = router.Close()
	}()
	router.AddHandler("printer", events.TopicReplay, events.StepPrinterFunc("", w))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		select {
		case <-router.Running():
		case <-ctx.Done():
			return ctx.Err()
		}
		return fn(ctx, router.Sink(events.TopicReplay))
	})
	eg.Go(func() error {
		err := router.Run(ctx)
		log.Debug().Err(err).Msg("Event router stopped")
		return err
	})
	return eg.Wait()
}
