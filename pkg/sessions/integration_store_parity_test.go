package sessions

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type backendFactory struct {
	name  string
	build func(t *testing.T, options ...StoreOption) Store
}

func allBackends() []backendFactory {
	return []backendFactory{
		{
			name: "memory",
			build: func(t *testing.T, options ...StoreOption) Store {
				t.Helper()
				return NewInMemoryStore(options...)
			},
		},
		{
			name: "file",
			build: func(t *testing.T, options ...StoreOption) Store {
				t.Helper()
				store, err := NewJSONFileStore(filepath.Join(t.TempDir(), "sessions.json"), options...)
				require.NoError(t, err)
				return store
			},
		},
		{
			name: "sqlite",
			build: func(t *testing.T, options ...StoreOption) Store {
				t.Helper()
				dsn, err := SQLiteDSNForFile(filepath.Join(t.TempDir(), "sessions.db"))
				require.NoError(t, err)
				store, err := NewSQLiteStore(dsn, options...)
				require.NoError(t, err)
				return store
			},
		},
		{
			name: "bolt",
			build: func(t *testing.T, options ...StoreOption) Store {
				t.Helper()
				store, err := NewBoltStore(filepath.Join(t.TempDir(), "sessions.bolt"), options...)
				require.NoError(t, err)
				return store
			},
		},
	}
}

func sampleTranscript(texts ...string) *transcript.Transcript {
	t := transcript.New()
	for i, text := range texts {
		sender := transcript.SenderHuman
		if i%2 == 1 {
			sender = transcript.SenderAssistant
		}
		t.Append(transcript.NewTurn(sender, text))
	}
	return t
}

func TestStoreLifecycleParityAcrossBackends(t *testing.T) {
	for _, backend := range allBackends() {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			clock := newTickingClock()
			store := backend.build(t, WithClock(clock.Now))
			t.Cleanup(func() { _ = store.Close() })

			list, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)

			require.NoError(t, store.Save(ctx, "trip", sampleTranscript("Hi", "Hello")))
			require.NoError(t, store.Save(ctx, "work", sampleTranscript("Plan")))

			loaded, found, err := store.Load(ctx, "trip")
			require.NoError(t, err)
			require.True(t, found)
			require.Len(t, loaded.Turns, 2)
			assert.Equal(t, "Hello", transcript.ExtractText(loaded.Turns[1]))

			// the loaded value is detached from the store
			loaded.Append(transcript.NewTurn(transcript.SenderHuman, "local only"))
			again, _, err := store.Load(ctx, "trip")
			require.NoError(t, err)
			assert.Len(t, again.Turns, 2)

			// overwrite: last write wins and moves to the top of the list
			require.NoError(t, store.Save(ctx, " trip ", sampleTranscript("Hi", "Hello", "More")))
			list, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "trip", list[0].Name)
			assert.Equal(t, "trip", list[0].ID)
			assert.Equal(t, "work", list[1].Name)
			assert.True(t, list[0].LastModified.After(list[1].LastModified))

			again, _, err = store.Load(ctx, "trip")
			require.NoError(t, err)
			assert.Len(t, again.Turns, 3)

			_, found, err = store.Load(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			before, err := store.List(ctx)
			require.NoError(t, err)
			deleted, err := store.Delete(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, deleted)
			after, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			deleted, err = store.Delete(ctx, "work")
			require.NoError(t, err)
			assert.True(t, deleted)

			list, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "trip", list[0].Name)

			err = store.Save(ctx, "   ", sampleTranscript("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			require.NoError(t, store.Close())
			_, err = store.List(ctx)
			assert.True(t, errors.Is(err, ErrClosed))
		})
	}
}

func TestStoreSavesDeepCopy(t *testing.T) {
	for _, backend := range allBackends() {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			store := backend.build(t)
			t.Cleanup(func() { _ = store.Close() })

			tr := sampleTranscript("before")
			require.NoError(t, store.Save(ctx, "s", tr))
			require.NoError(t, transcript.EditTurn(tr, 0, "after", time.Now()))

			loaded, found, err := store.Load(ctx, "s")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "before", transcript.ExtractText(loaded.Turns[0]))
		})
	}
}

func TestStorePreservesUnknownFields(t *testing.T) {
	const exported = `{"uuid": "abc", "chat_messages": [{"sender": "human", "uuid": "m1", "content": [{"type": "text", "text": "Hi", "citations": []}]}]}`
	for _, backend := range allBackends() {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			store := backend.build(t)
			t.Cleanup(func() { _ = store.Close() })

			tr, err := transcript.Parse([]byte(exported))
			require.NoError(t, err)
			require.NoError(t, store.Save(ctx, "export", tr))

			loaded, _, err := store.Load(ctx, "export")
			require.NoError(t, err)
			b, err := loaded.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, exported, string(b))
		})
	}
}
