package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sessions.json")
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	store, err := NewJSONFileStore(path, WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "Trip", sampleTranscript("Hi", "Hello")))
	require.NoError(t, store.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Contains(t, doc, "Trip")
	assert.JSONEq(t, `"Trip"`, string(doc["Trip"]["name"]))
	assert.JSONEq(t, `"2024-05-01T10:00:00.000Z"`, string(doc["Trip"]["lastModified"]))
	assert.Contains(t, string(doc["Trip"]["data"]), "chat_messages")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewJSONFileStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, at.Equal(list[0].LastModified))

	loaded, found, err := reopened.Load(ctx, "Trip")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Hello", transcript.ExtractText(loaded.Turns[1]))
}

func TestJSONFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONFileStore(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
}

func TestJSONFileStoreRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")

	store, err := NewJSONFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "kept", sampleTranscript("one")))

	// a directory in place of the temp file makes the write fail
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	err = store.Save(ctx, "new", sampleTranscript("two"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "save", se.Op)
	assert.Equal(t, "new", se.Name)

	_, found, err := store.Load(ctx, "new")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := store.Delete(ctx, "kept")
	require.Error(t, err)
	assert.False(t, deleted)
	_, found, err = store.Load(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRecordJSONNullData(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"name": "x", "data": null, "lastModified": "2024-01-01T00:00:00.000Z"}`), &rec))
	assert.Equal(t, "x", rec.Name)
	require.NotNil(t, rec.Data)
	assert.Equal(t, 0, rec.Data.Len())
}

func TestJSONFileStoreNormalizesKeysOnLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")
	doc := `{
  " trip ": {"name": " trip ", "lastModified": "2024-01-01T00:00:00.000Z", "data": {"chat_messages": []}},
  "trip": {"name": "trip", "lastModified": "2024-02-01T00:00:00.000Z", "data": {"chat_messages": [{"sender": "human", "content": [{"type": "text", "text": "newer"}]}]}},
  "   ": {"name": "", "lastModified": "2024-03-01T00:00:00.000Z", "data": {}},
  "Notes\t": {"name": "Notes", "lastModified": "2024-01-05T00:00:00.000Z", "data": {"chat_messages": []}}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	store, err := NewJSONFileStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	list, err := store.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"trip", "Notes"}, names)

	loaded, found, err := store.Load(ctx, "trip")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "newer", transcript.ExtractText(loaded.Turns[0]))

	deleted, err := store.Delete(ctx, " Notes ")
	require.NoError(t, err)
	assert.True(t, deleted)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "trip", list[0].Name)
}
