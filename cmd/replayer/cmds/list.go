package cmds

import (
	"context"

	glazedcmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/replayer/pkg/sessions"
)

// ListCommand emits one row per saved session, most recently modified first.
type ListCommand struct {
	*glazedcmds.CommandDescription
}

var _ glazedcmds.GlazeCommand = (*ListCommand)(nil)

func NewListCommand() (*ListCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	return &ListCommand{
		CommandDescription: glazedcmds.NewCommandDescription(
			"list",
			glazedcmds.WithShort("List saved sessions, most recently modified first"),
			glazedcmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *ListCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
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

	summaries, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, row := range sessionRows(summaries) {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func sessionRows(summaries []sessions.Summary) []types.Row {
	rows := make([]types.Row, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, types.NewRow(
			types.MRP("id", summary.ID),
			types.MRP("name", summary.Name),
			types.MRP("lastModified", summary.LastModified.UTC().Format(timestampLayout)),
		))
	}
	return rows
}
