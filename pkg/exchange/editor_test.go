package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTurnSession(t *testing.T, name string) *Session {
	t.Helper()
	tr := hiTranscript(t)
	tr.Append(
		transcript.NewTurn(transcript.SenderHuman, "How are you?"),
		transcript.NewTurn(transcript.SenderAssistant, "I'm well."),
	)
	return NewSession(name, tr)
}

func TestEditTurn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	store := sessions.NewInMemoryStore()
	sink := &events.CollectingSink{}
	e := NewEditor(WithStore(store), WithEventSinks(sink), WithClock(func() time.Time { return now }))

	sess := threeTurnSession(t, "trip")
	require.NoError(t, e.EditTurn(ctx, sess, 0, "Hello"))

	turns := sess.Transcript.Turns
	require.Len(t, turns, 3)
	assert.Equal(t, "Hello", transcript.ExtractText(turns[0]))
	assert.True(t, turns[0].Edited)
	assert.Equal(t, now, *turns[0].EditedAt)
	require.Len(t, sink.Events(), 2)
	for _, ev := range sink.Events() {
		assert.Equal(t, now, ev.Metadata().Timestamp)
	}
	assert.Equal(t, transcript.SenderHuman, turns[0].Sender)
	assert.Equal(t, "How are you?", transcript.ExtractText(turns[1]))
	assert.Equal(t, "I'm well.", transcript.ExtractText(turns[2]))
	assert.False(t, turns[1].Edited)

	saved, found, err := store.Load(ctx, "trip")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Hello", transcript.ExtractText(saved.Turns[0]))

	assert.Equal(t, []events.EventType{events.EventTypeSessionSaved, events.EventTypeTurnEdited}, sink.Types())
	edited := sink.Events()[1].(*events.EventTurnEdited)
	assert.True(t, edited.Persisted)
	assert.Equal(t, 0, edited.Index)
}

func TestEditTurnOutOfRange(t *testing.T) {
	store := sessions.NewInMemoryStore()
	e := NewEditor(WithStore(store))
	sess := threeTurnSession(t, "trip")
	before := marshal(t, sess.Transcript)

	err := e.EditTurn(context.Background(), sess, 3, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrIndexOutOfRange))
	assert.Equal(t, before, marshal(t, sess.Transcript))

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.True(t, errors.Is(e.EditTurn(context.Background(), nil, 0, "x"), ErrValidation))
}

func TestEditTurnAutoSaveFailureIsSwallowed(t *testing.T) {
	store := &failingStore{Store: sessions.NewInMemoryStore()}
	e := NewEditor(WithStore(store))
	sess := threeTurnSession(t, "trip")

	require.NoError(t, e.EditTurn(context.Background(), sess, 2, "Fine."))
	assert.Equal(t, "Fine.", transcript.ExtractText(sess.Transcript.Turns[2]))
	assert.Equal(t, 1, store.saves)
}

func TestEditSessionSave(t *testing.T) {
	e := NewEditor()
	sess := threeTurnSession(t, "")

	es, err := e.Begin(sess, 1)
	require.NoError(t, err)
	assert.Equal(t, "How are you?", es.Original())
	assert.Equal(t, "How are you?", es.Draft())

	require.NoError(t, es.SetDraft("How are you doing?"))
	// drafts do not touch the transcript
	assert.Equal(t, "How are you?", transcript.ExtractText(sess.Transcript.Turns[1]))

	require.NoError(t, es.Save(context.Background(), es.Draft()))
	assert.Equal(t, "How are you doing?", transcript.ExtractText(sess.Transcript.Turns[1]))
	assert.True(t, sess.Transcript.Turns[1].Edited)

	assert.ErrorIs(t, es.Save(context.Background(), "again"), ErrEditClosed)
	assert.ErrorIs(t, es.Cancel(), ErrEditClosed)
	assert.ErrorIs(t, es.SetDraft("x"), ErrEditClosed)
}

func TestEditSessionCancel(t *testing.T) {
	store := sessions.NewInMemoryStore()
	sink := &events.CollectingSink{}
	e := NewEditor(WithStore(store), WithEventSinks(sink))
	sess := threeTurnSession(t, "trip")
	before := marshal(t, sess.Transcript)

	es, err := e.Begin(sess, 0)
	require.NoError(t, err)
	require.NoError(t, es.SetDraft("discarded"))
	require.NoError(t, es.Cancel())

	assert.Equal(t, "Hi", es.Draft())
	assert.Equal(t, before, marshal(t, sess.Transcript))
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, sink.Events())
	assert.ErrorIs(t, es.Save(context.Background(), "late"), ErrEditClosed)
}

func TestBeginOutOfRange(t *testing.T) {
	e := NewEditor()
	_, err := e.Begin(threeTurnSession(t, ""), -1)
	assert.True(t, errors.Is(err, transcript.ErrIndexOutOfRange))
	_, err = e.Begin(nil, 0)
	assert.True(t, errors.Is(err, ErrValidation))
}
