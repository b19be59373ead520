package transcript

import (
	"errors"
	"fmt"
	"time"
)

var ErrIndexOutOfRange = errors.New("turn index out of range")

// IndexError reports an edit targeting a turn that does not exist.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e == nil {
		return ErrIndexOutOfRange.Error()
	}
	return fmt.Sprintf("%s: index=%d turns=%d", ErrIndexOutOfRange, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// SetText replaces the content of the first text block. A turn without any
// text block gets one appended so the new text is not lost.
func (t *Turn) SetText(text string) {
	t.opaque = nil
	if i, ok := FirstTextBlock(t); ok {
		t.Blocks[i].Text = text
		t.Blocks[i].hasText = true
		return
	}
	t.Blocks = append(t.Blocks, NewTextBlock(text))
}

// EditTurn corrects the turn at index in place and marks it as edited.
// Sender, ordering and the number of turns are left untouched.
func EditTurn(t *Transcript, index int, newText string, now time.Time) error {
	if index < 0 || index >= t.Len() {
		return &IndexError{Index: index, Len: t.Len()}
	}
	turn := t.Turns[index]
	if turn == nil {
		turn = &Turn{}
		t.Turns[index] = turn
	}
	turn.SetText(newText)
	turn.Edited = true
	ts := now
	turn.EditedAt = &ts
	return nil
}
