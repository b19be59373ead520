package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ModelInfo is one entry of the model catalog.
type ModelInfo struct {
	ID          string     `json:"id" yaml:"id"`
	DisplayName string     `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Type        string     `json:"type,omitempty" yaml:"type,omitempty"`
}

// Name returns the display name, falling back to the id.
func (m ModelInfo) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

type ModelList struct {
	Data    []ModelInfo `json:"data"`
	HasMore bool        `json:"has_more"`
	FirstID string      `json:"first_id,omitempty"`
	LastID  string      `json:"last_id,omitempty"`
}

// ListModels returns the first page of models available to the API key.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/models?limit=100", nil)
	if err != nil {
		return nil, err
	}
	var list ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(err, "could not decode model list")
	}
	return &list, nil
}
