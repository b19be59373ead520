// Package transcript holds the canonical in-memory representation of an
// exported chat conversation.
//
// A Transcript is an ordered list of Turns, each made of content Blocks.
// Fields the package does not understand are kept verbatim in the Extra maps
// so that a transcript read from an export can be written back without loss.
package transcript

import (
	"encoding/json"
	"time"

	"github.com/huandu/go-clone"
)

type Sender string

const (
	SenderHuman     Sender = "human"
	SenderAssistant Sender = "assistant"
)

const BlockTypeText = "text"

// Block is one entry of a turn's content array.
type Block struct {
	Type string
	Text string
	// Extra holds every field other than type and text.
	Extra map[string]json.RawMessage

	hasText bool
	// opaque is set when the entry was not a JSON object.
	opaque json.RawMessage
}

func NewTextBlock(text string) Block {
	return Block{Type: BlockTypeText, Text: text, hasText: true}
}

func (b Block) IsText() bool {
	return b.opaque == nil && b.Type == BlockTypeText
}

// Turn is one message from either party.
type Turn struct {
	Sender   Sender
	Blocks   []Block
	Edited   bool
	EditedAt *time.Time
	// Extra holds every per-message field that is not modelled above,
	// including a content value that was not an array.
	Extra map[string]json.RawMessage

	hasEdited    bool
	editedAtRaw  json.RawMessage
	editedAtOrig time.Time
	opaque       json.RawMessage
}

func NewTurn(sender Sender, text string) *Turn {
	return &Turn{
		Sender: sender,
		Blocks: []Block{NewTextBlock(text)},
	}
}

// Transcript is the full ordered conversation.
type Transcript struct {
	Turns []*Turn
	// Extra holds all top-level fields other than chat_messages.
	Extra map[string]json.RawMessage
}

func New() *Transcript {
	return &Transcript{Turns: []*Turn{}}
}

func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Turns)
}

// Append adds turns at the end. Existing turns are never reordered.
func (t *Transcript) Append(turns ...*Turn) {
	if t.Turns == nil {
		t.Turns = make([]*Turn, 0, len(turns))
	}
	t.Turns = append(t.Turns, turns...)
}

// Clone returns a deep copy that shares no state with t.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	return clone.Clone(t).(*Transcript)
}
