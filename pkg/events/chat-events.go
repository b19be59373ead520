package events

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeExchangeCompleted is published after a successful SendTurn.
	EventTypeExchangeCompleted EventType = "exchange-completed"
	EventTypeTurnEdited        EventType = "turn-edited"
	EventTypeSessionSaved      EventType = "session-saved"
	// EventTypeAutosaveFailed reports a best-effort save that did not make it
	// to the store. The in-memory transcript is still up to date.
	EventTypeAutosaveFailed EventType = "autosave-failed"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// raw JSON when the event was decoded by NewEventFromJson
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

var _ Event = &EventImpl{}

type EventExchangeCompleted struct {
	EventImpl
	Index         int    `json:"index"`
	Turns         int    `json:"turns"`
	AssistantText string `json:"assistant_text"`
	Persisted     bool   `json:"persisted"`
}

func NewExchangeCompletedEvent(metadata EventMetadata, index int, turns int, text string, persisted bool) *EventExchangeCompleted {
	return &EventExchangeCompleted{
		EventImpl: EventImpl{
			Type_:     EventTypeExchangeCompleted,
			Metadata_: metadata,
		},
		Index:         index,
		Turns:         turns,
		AssistantText: text,
		Persisted:     persisted,
	}
}

var _ Event = &EventExchangeCompleted{}

type EventTurnEdited struct {
	EventImpl
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Persisted bool   `json:"persisted"`
}

func NewTurnEditedEvent(metadata EventMetadata, index int, text string, persisted bool) *EventTurnEdited {
	return &EventTurnEdited{
		EventImpl: EventImpl{
			Type_:     EventTypeTurnEdited,
			Metadata_: metadata,
		},
		Index:     index,
		Text:      text,
		Persisted: persisted,
	}
}

var _ Event = &EventTurnEdited{}

type EventSessionSaved struct {
	EventImpl
	Turns int `json:"turns"`
}

func NewSessionSavedEvent(metadata EventMetadata, turns int) *EventSessionSaved {
	return &EventSessionSaved{
		EventImpl: EventImpl{
			Type_:     EventTypeSessionSaved,
			Metadata_: metadata,
		},
		Turns: turns,
	}
}

var _ Event = &EventSessionSaved{}

type EventAutosaveFailed struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewAutosaveFailedEvent(metadata EventMetadata, err error) *EventAutosaveFailed {
	s := ""
	if err != nil {
		s = err.Error()
	}
	return &EventAutosaveFailed{
		EventImpl: EventImpl{
			Type_:     EventTypeAutosaveFailed,
			Metadata_: metadata,
		},
		ErrorString: s,
	}
}

var _ Event = &EventAutosaveFailed{}

// NewEventFromJson decodes a payload produced by json.Marshal on one of the
// events above into its concrete type.
func NewEventFromJson(b []byte) (Event, error) {
	var hdr struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(b, &hdr); err != nil {
		return nil, err
	}

	var ev Event
	switch hdr.Type {
	case EventTypeExchangeCompleted:
		ev = &EventExchangeCompleted{}
	case EventTypeTurnEdited:
		ev = &EventTurnEdited{}
	case EventTypeSessionSaved:
		ev = &EventSessionSaved{}
	case EventTypeAutosaveFailed:
		ev = &EventAutosaveFailed{}
	default:
		return nil, fmt.Errorf("unknown event type %q", hdr.Type)
	}
	if err := json.Unmarshal(b, ev); err != nil {
		return nil, err
	}
	setPayload(ev, b)
	return ev, nil
}

func setPayload(ev Event, b []byte) {
	switch e := ev.(type) {
	case *EventExchangeCompleted:
		e.payload = b
	case *EventTurnEdited:
		e.payload = b
	case *EventSessionSaved:
		e.payload = b
	case *EventAutosaveFailed:
		e.payload = b
	}
}
