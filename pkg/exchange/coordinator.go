// Package exchange sequences the I/O around a transcript: sending a new turn
// to the remote API, editing recorded turns, auto-saving and notifying.
package exchange

import (
	"context"
	"strings"

	"github.com/go-go-golems/replayer/pkg/claude"
	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Remote is the conversational API.
type Remote interface {
	Send(ctx context.Context, credential sessions.Credential, req *api.MessageRequest) (*api.MessageResponse, error)
}

type Coordinator struct {
	remote Remote
	opts   *options
}

func NewCoordinator(remote Remote, opts ...Option) (*Coordinator, error) {
	if remote == nil {
		return nil, errors.New("remote is nil")
	}
	return &Coordinator{
		remote: remote,
		opts:   newOptions(opts...),
	}, nil
}

type Result struct {
	Transcript    *transcript.Transcript
	AssistantText string
	Response      *api.MessageResponse
	// Persisted is true when the auto-save succeeded.
	Persisted bool
}

// SendTurn sends the effective history of sess plus newText to the remote and
// appends the human turn and the assistant's reply. On any error the
// transcript is left as it was, so the call can simply be repeated.
func (c *Coordinator) SendTurn(
	ctx context.Context,
	credential sessions.Credential,
	sess *Session,
	newText string,
	model string,
) (*Result, error) {
	if credential.IsZero() {
		return nil, &ValidationError{Field: "credential", Reason: "an API key is required"}
	}
	if strings.TrimSpace(newText) == "" {
		return nil, &ValidationError{Field: "text", Reason: "message must not be empty"}
	}
	if sess == nil || sess.Transcript == nil {
		return nil, &ValidationError{Field: "transcript", Reason: "no transcript loaded"}
	}
	if model == "" {
		model = c.opts.model
	}

	t := sess.Transcript
	messages := claude.ToWireMessages(t)
	messages = append(messages, api.Message{Role: api.RoleUser, Content: newText})

	meta := c.opts.newMetadata(sess.Name)
	meta.Model = model
	log.Debug().
		Str("exchange_id", meta.ID.String()).
		Str("session", sess.Name).
		Str("model", model).
		Int("messages", len(messages)).
		Msg("Sending turn")

	resp, err := c.remote.Send(ctx, credential, &api.MessageRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: c.opts.maxTokens,
	})
	if err != nil {
		return nil, newRemoteError(err)
	}
	if resp == nil {
		return nil, &RemoteError{Message: "empty response"}
	}
	assistantText, ok := resp.FirstText()
	if !ok {
		return nil, &RemoteError{Message: "response contained no text block"}
	}

	t.Append(
		transcript.NewTurn(transcript.SenderHuman, newText),
		transcript.NewTurn(transcript.SenderAssistant, assistantText),
	)

	meta.StopReason = resp.StopReason
	meta.Usage = &events.Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	persisted := c.opts.autoSave(ctx, sess, meta)

	log.Debug().
		Str("exchange_id", meta.ID.String()).
		Int("turns", t.Len()).
		Bool("persisted", persisted).
		Msg("Exchange completed")
	c.opts.publish(ctx, events.NewExchangeCompletedEvent(meta, t.Len()-1, t.Len(), assistantText, persisted))

	return &Result{
		Transcript:    t,
		AssistantText: assistantText,
		Response:      resp,
		Persisted:     persisted,
	}, nil
}
