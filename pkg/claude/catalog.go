package claude

import (
	"context"
	"sort"

	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/rs/zerolog/log"
)

// DefaultModels is shown when the catalog cannot be fetched.
func DefaultModels() []api.ModelInfo {
	return []api.ModelInfo{
		{ID: "claude-3-5-sonnet-latest", DisplayName: "Claude 3.5 Sonnet"},
		{ID: "claude-3-opus-20240229", DisplayName: "Claude 3 Opus"},
	}
}

// SortModels orders models newest first. Models without a creation date sort
// last.
func SortModels(models []api.ModelInfo) {
	sort.SliceStable(models, func(i, j int) bool {
		a, b := models[i].CreatedAt, models[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

type ModelLister interface {
	ListModels(ctx context.Context, credential sessions.Credential) (*api.ModelList, error)
}

// FetchModels returns the sorted catalog, or DefaultModels when the lister
// fails or returns nothing. The boolean reports whether the fallback was used.
func FetchModels(ctx context.Context, lister ModelLister, credential sessions.Credential) ([]api.ModelInfo, bool) {
	if lister == nil || credential.IsZero() {
		return DefaultModels(), true
	}
	list, err := lister.ListModels(ctx, credential)
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch model catalog, using defaults")
		return DefaultModels(), true
	}
	if list == nil || len(list.Data) == 0 {
		log.Debug().Msg("Model catalog is empty, using defaults")
		return DefaultModels(), true
	}
	models := append([]api.ModelInfo(nil), list.Data...)
	SortModels(models)
	return models, false
}
