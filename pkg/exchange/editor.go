package exchange

import (
	"context"
	"sync"

	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/rs/zerolog/log"
)

// Editor corrects recorded turns in place. It never talks to the remote.
type Editor struct {
	opts *options
}

func NewEditor(opts ...Option) *Editor {
	return &Editor{opts: newOptions(opts...)}
}

// EditTurn replaces the text of the turn at index and marks it edited, then
// auto-saves named sessions.
func (e *Editor) EditTurn(ctx context.Context, sess *Session, index int, newText string) error {
	if sess == nil || sess.Transcript == nil {
		return &ValidationError{Field: "transcript", Reason: "no transcript loaded"}
	}
	if err := transcript.EditTurn(sess.Transcript, index, newText, e.opts.now()); err != nil {
		return err
	}

	meta := e.opts.newMetadata(sess.Name)
	persisted := e.opts.autoSave(ctx, sess, meta)
	log.Debug().
		Str("session", sess.Name).
		Int("index", index).
		Bool("persisted", persisted).
		Msg("Turn edited")
	e.opts.publish(ctx, events.NewTurnEditedEvent(meta, index, newText, persisted))
	return nil
}

// Begin enters the editing state for one turn. The returned EditSession
// holds a draft that starts as the turn's current text.
func (e *Editor) Begin(sess *Session, index int) (*EditSession, error) {
	if sess == nil || sess.Transcript == nil {
		return nil, &ValidationError{Field: "transcript", Reason: "no transcript loaded"}
	}
	n := sess.Transcript.Len()
	if index < 0 || index >= n {
		return nil, &transcript.IndexError{Index: index, Len: n}
	}
	original := transcript.ExtractText(sess.Transcript.Turns[index])
	return &EditSession{
		editor:   e,
		sess:     sess,
		index:    index,
		original: original,
		draft:    original,
	}, nil
}

// EditSession is a single Editing → Display transition. Exactly one of Save
// or Cancel may complete it.
type EditSession struct {
	mu       sync.Mutex
	editor   *Editor
	sess     *Session
	index    int
	original string
	draft    string
	done     bool
}

func (s *EditSession) Index() int { return s.index }

// Original is the turn text captured when editing started.
func (s *EditSession) Original() string { return s.original }

func (s *EditSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *EditSession) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrEditClosed
	}
	s.draft = text
	return nil
}

// Save commits text to the turn through Editor.EditTurn.
func (s *EditSession) Save(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrEditClosed
	}
	if err := s.editor.EditTurn(ctx, s.sess, s.index, text); err != nil {
		return err
	}
	s.draft = text
	s.done = true
	return nil
}

// Cancel discards the draft. The turn and the store are left untouched.
func (s *EditSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrEditClosed
	}
	s.draft = s.original
	s.done = true
	return nil
}
