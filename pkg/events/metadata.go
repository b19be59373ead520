package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens" mapstructure:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens" mapstructure:"output_tokens"`
}

type EventMetadata struct {
	// ID identifies one exchange or edit; all events it produces share it.
	ID         uuid.UUID `json:"message_id" yaml:"message_id" mapstructure:"message_id"`
	Session    string    `json:"session,omitempty" yaml:"session,omitempty" mapstructure:"session"`
	Model      string    `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	StopReason string    `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty" mapstructure:"stop_reason"`
	Usage      *Usage    `json:"usage,omitempty" yaml:"usage,omitempty" mapstructure:"usage"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp" mapstructure:"timestamp"`
}

func NewEventMetadata(session string) EventMetadata {
	return EventMetadata{
		ID:        uuid.New(),
		Session:   session,
		Timestamp: time.Now(),
	}
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.Session != "" {
		e.Str("session", em.Session)
	}
	if em.Model != "" {
		e.Str("model", em.Model)
	}
	if em.StopReason != "" {
		e.Str("stop_reason", em.StopReason)
	}
	if em.Usage != nil {
		e.Int("input_tokens", em.Usage.InputTokens)
		e.Int("output_tokens", em.Usage.OutputTokens)
	}
}
