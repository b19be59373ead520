package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single wire message. Content is always plain text here.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRequest is the Messages API request payload.
type MessageRequest struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	System        string    `json:"system,omitempty"`
	Metadata      *Metadata `json:"metadata,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	TopK          *int      `json:"top_k,omitempty"`
}

type Metadata struct {
	UserID string `json:"user_id,omitempty"`
}

// MessageResponse is the Messages API response payload.
type MessageResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   string         `json:"stop_reason,omitempty"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        Usage          `json:"usage"`

	// Raw is the undecoded response body, kept for logging.
	Raw json.RawMessage `json:"-"`
}

// ContentBlock is one response content entry. Only text blocks are decoded.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// FirstText returns the first text block of the response.
func (r *MessageResponse) FirstText() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, c := range r.Content {
		if c.Type == "text" {
			return c.Text, true
		}
	}
	return "", false
}

// SendMessage posts a non-streaming Messages API request.
func (c *Client) SendMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	if req == nil {
		return nil, errors.New("nil message request")
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/messages", req)
	if err != nil {
		return nil, err
	}

	var messageResp MessageResponse
	if err := json.Unmarshal(body, &messageResp); err != nil {
		return nil, errors.Wrap(err, "could not decode message response")
	}
	messageResp.Raw = body
	return &messageResp, nil
}
