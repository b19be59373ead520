package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, DefaultAPIVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"model": "model-x",
			"max_tokens": 1024,
			"messages": [
				{"role": "user", "content": "Hi"},
				{"role": "user", "content": "How are you?"}
			]
		}`, string(b))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "model-x",
			"content": [{"type": "tool_use", "id": "t"}, {"type": "text", "text": "I'm well."}, {"type": "text", "text": "ignored"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`)
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL)
	resp, err := c.SendMessage(context.Background(), &MessageRequest{
		Model:     "model-x",
		MaxTokens: 1024,
		Messages: []Message{
			{Role: RoleUser, Content: "Hi"},
			{Role: RoleUser, Content: "How are you?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	require.Len(t, resp.Content, 3)
	text, ok := resp.FirstText()
	assert.True(t, ok)
	assert.Equal(t, "I'm well.", text)
	assert.True(t, json.Valid(resp.Raw))
}

func TestSendMessageErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    string
		wantMessage string
	}{
		{
			name:        "anthropic envelope",
			status:      http.StatusUnauthorized,
			body:        `{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`,
			wantType:    "authentication_error",
			wantMessage: "invalid x-api-key",
		},
		{
			name:        "flat error",
			status:      http.StatusBadRequest,
			body:        `{"error": "Missing required fields"}`,
			wantMessage: "Missing required fields",
		},
		{
			name:        "plain text",
			status:      http.StatusBadGateway,
			body:        "upstream down\n",
			wantMessage: "upstream down",
		},
		{
			name:        "empty body",
			status:      http.StatusServiceUnavailable,
			wantMessage: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient("k", srv.URL).SendMessage(context.Background(), &MessageRequest{Model: "m"})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestSendMessageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient("k", url).SendMessage(context.Background(), &MessageRequest{Model: "m"})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.Header.Get("anthropic-version"))
		_, _ = io.WriteString(w, `{"data": [
			{"id": "claude-old", "type": "model", "created_at": "2024-02-29T00:00:00Z"},
			{"id": "claude-new", "display_name": "Claude New", "created_at": "2025-01-01T00:00:00Z"}
		], "has_more": false}`)
	}))
	defer srv.Close()

	list, err := NewClient("k", srv.URL, WithAPIVersion("2024-01-01")).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "claude-old", list.Data[0].Name())
	assert.Equal(t, "Claude New", list.Data[1].Name())
	require.NotNil(t, list.Data[1].CreatedAt)
	assert.Equal(t, 2025, list.Data[1].CreatedAt.Year())
}
