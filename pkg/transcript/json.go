package transcript

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	fieldChatMessages = "chat_messages"
	fieldSender       = "sender"
	fieldContent      = "content"
	fieldEdited       = "edited"
	fieldEditedAt     = "editedAt"
	fieldType         = "type"
	fieldText         = "text"
)

// isoMillis matches the timestamps written by the exporting client.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Parse decodes an exported transcript. It only fails if data is not a JSON
// object; malformed messages degrade to turns without text.
func Parse(data []byte) (*Transcript, error) {
	t := &Transcript{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "could not parse transcript")
	}
	return t, nil
}

// MarshalIndent renders the canonical JSON form with two-space indentation.
func MarshalIndent(t *Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

func (t *Transcript) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("transcript must be a JSON object")
	}

	*t = Transcript{}
	if v, ok := raw[fieldChatMessages]; ok && isArray(v) {
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err == nil {
			t.Turns = make([]*Turn, 0, len(items))
			for _, item := range items {
				turn := &Turn{}
				if err := turn.UnmarshalJSON(item); err != nil {
					return err
				}
				t.Turns = append(t.Turns, turn)
			}
			delete(raw, fieldChatMessages)
		}
	}
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}

func (t Transcript) MarshalJSON() ([]byte, error) {
	out := copyFields(t.Extra, 1)
	if t.Turns != nil {
		turns := make([]json.RawMessage, 0, len(t.Turns))
		for _, turn := range t.Turns {
			if turn == nil {
				turns = append(turns, json.RawMessage("null"))
				continue
			}
			b, err := turn.MarshalJSON()
			if err != nil {
				return nil, err
			}
			turns = append(turns, b)
		}
		b, err := json.Marshal(turns)
		if err != nil {
			return nil, err
		}
		out[fieldChatMessages] = b
	}
	return json.Marshal(out)
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	*t = Turn{}
	raw := map[string]json.RawMessage{}
	if !isObject(data) || json.Unmarshal(data, &raw) != nil {
		t.opaque = append(json.RawMessage(nil), data...)
		return nil
	}

	if v, ok := raw[fieldSender]; ok && !isNull(v) {
		var s string
		if json.Unmarshal(v, &s) == nil {
			t.Sender = Sender(s)
			delete(raw, fieldSender)
		}
	}
	if v, ok := raw[fieldContent]; ok && isArray(v) {
		var items []json.RawMessage
		if json.Unmarshal(v, &items) == nil {
			t.Blocks = make([]Block, 0, len(items))
			for _, item := range items {
				var b Block
				b.decode(item)
				t.Blocks = append(t.Blocks, b)
			}
			delete(raw, fieldContent)
		}
	}
	if v, ok := raw[fieldEdited]; ok && !isNull(v) {
		var e bool
		if json.Unmarshal(v, &e) == nil {
			t.Edited = e
			t.hasEdited = true
			delete(raw, fieldEdited)
		}
	}
	if v, ok := raw[fieldEditedAt]; ok && !isNull(v) {
		var ts time.Time
		if json.Unmarshal(v, &ts) == nil {
			t.EditedAt = &ts
			t.editedAtRaw = v
			t.editedAtOrig = ts
			delete(raw, fieldEditedAt)
		}
	}
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}

func (t Turn) MarshalJSON() ([]byte, error) {
	if t.opaque != nil {
		return t.opaque, nil
	}
	out := copyFields(t.Extra, 4)
	if t.Sender != "" {
		if err := setField(out, fieldSender, string(t.Sender)); err != nil {
			return nil, err
		}
	}
	if t.Blocks != nil {
		blocks := make([]json.RawMessage, 0, len(t.Blocks))
		for _, b := range t.Blocks {
			bb, err := b.MarshalJSON()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, bb)
		}
		if err := setField(out, fieldContent, blocks); err != nil {
			return nil, err
		}
	}
	if t.Edited || t.hasEdited {
		if err := setField(out, fieldEdited, t.Edited); err != nil {
			return nil, err
		}
	}
	if t.EditedAt != nil {
		if t.editedAtRaw != nil && t.editedAtOrig.Equal(*t.EditedAt) {
			out[fieldEditedAt] = t.editedAtRaw
		} else if err := setField(out, fieldEditedAt, t.EditedAt.UTC().Format(isoMillis)); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	b.decode(data)
	return nil
}

func (b *Block) decode(data []byte) {
	*b = Block{}
	raw := map[string]json.RawMessage{}
	if !isObject(data) || json.Unmarshal(data, &raw) != nil {
		b.opaque = append(json.RawMessage(nil), data...)
		return
	}
	if v, ok := raw[fieldType]; ok && !isNull(v) {
		var s string
		if json.Unmarshal(v, &s) == nil {
			b.Type = s
			delete(raw, fieldType)
		}
	}
	if v, ok := raw[fieldText]; ok && !isNull(v) {
		var s string
		if json.Unmarshal(v, &s) == nil {
			b.Text = s
			b.hasText = true
			delete(raw, fieldText)
		}
	}
	if len(raw) > 0 {
		b.Extra = raw
	}
}

func (b Block) MarshalJSON() ([]byte, error) {
	if b.opaque != nil {
		return b.opaque, nil
	}
	out := copyFields(b.Extra, 2)
	if b.Type != "" {
		if err := setField(out, fieldType, b.Type); err != nil {
			return nil, err
		}
	}
	_, textInExtra := b.Extra[fieldText]
	if b.hasText || b.Text != "" || (b.Type == BlockTypeText && !textInExtra) {
		if err := setField(out, fieldText, b.Text); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func copyFields(in map[string]json.RawMessage, extra int) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in)+extra)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func setField(out map[string]json.RawMessage, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not encode field %s", key)
	}
	out[key] = b
	return nil
}

func isObject(data []byte) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '{'
}

// isNull reports a literal null. Unmarshalling null into a typed value is a
// no-op, so such fields are kept in Extra to be written back unchanged.
func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func isArray(data []byte) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '['
}
