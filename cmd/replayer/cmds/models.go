package cmds

import (
	"context"

	glazedcmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/replayer/pkg/claude"
	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/rs/zerolog/log"
)

// ModelsCommand emits one row per model the API key can use. When the
// catalog cannot be fetched the built-in defaults are listed instead.
type ModelsCommand struct {
	*glazedcmds.CommandDescription
}

var _ glazedcmds.GlazeCommand = (*ModelsCommand)(nil)

func NewModelsCommand() (*ModelsCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	return &ModelsCommand{
		CommandDescription: glazedcmds.NewCommandDescription(
			"models",
			glazedcmds.WithShort("List the models available to the API key"),
			glazedcmds.WithFlags(credentialParameters()...),
			glazedcmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *ModelsCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	flags := &credentialFlags{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, flags); err != nil {
		return err
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	credential, err := resolveCredential(*flags, false)
	if err != nil {
		return err
	}
	remote, err := claude.NewRemote(s.Claude)
	if err != nil {
		return err
	}

	models, fallback := claude.FetchModels(ctx, remote, credential)
	if fallback {
		log.Warn().Msg("Model catalog unavailable, listing defaults")
	}
	for _, row := range modelRows(models, s.Claude.Model) {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func modelRows(models []api.ModelInfo, defaultModel string) []types.Row {
	rows := make([]types.Row, 0, len(models))
	for _, m := range models {
		createdAt := ""
		if m.CreatedAt != nil {
			createdAt = m.CreatedAt.UTC().Format(timestampLayout)
		}
		rows = append(rows, types.NewRow(
			types.MRP("id", m.ID),
			types.MRP("display_name", m.Name()),
			types.MRP("created_at", createdAt),
			types.MRP("default", m.ID == defaultModel),
		))
	}
	return rows
}
