package sessions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// JSONFileStore keeps every session in one JSON document mapping the session
// name to {data, lastModified, name}. Each mutation rewrites the whole file
// through a temporary file and a rename.
type JSONFileStore struct {
	mu     sync.Mutex
	path   string
	store  *InMemoryStore
	opts   []StoreOption
	closed bool
}

var _ Store = (*JSONFileStore)(nil)

func NewJSONFileStore(path string, options ...StoreOption) (*JSONFileStore, error) {
	if path == "" {
		return nil, &ValidationError{Field: "path", Reason: "json session store path is required"}
	}
	s := &JSONFileStore{
		path:  path,
		store: NewInMemoryStore(options...),
		opts:  options,
	}
	if err := s.loadFromDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) Save(ctx context.Context, name string, t *transcript.Transcript) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, _, _ := s.store.get(n)
	if err := s.store.Save(ctx, n, t); err != nil {
		return err
	}
	if err := s.persistLocked(); err != nil {
		s.store.restore(n, prev)
		return storageErr("save", n, err)
	}
	return nil
}

func (s *JSONFileStore) Load(ctx context.Context, name string) (*transcript.Transcript, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	return s.store.Load(ctx, name)
}

func (s *JSONFileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.store.List(ctx)
}

func (s *JSONFileStore) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	prev, ok, err := s.store.get(name)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.store.Delete(ctx, prev.Name); err != nil {
		return false, err
	}
	if err := s.persistLocked(); err != nil {
		s.store.restore(prev.Name, prev)
		return false, storageErr("delete", prev.Name, err)
	}
	return true, nil
}

func (s *JSONFileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.store.Close()
}

func (s *JSONFileStore) loadFromDisk() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return storageErr("read", "", err)
	}
	if len(b) == 0 {
		return nil
	}

	records := map[string]*Record{}
	if err := json.Unmarshal(b, &records); err != nil {
		return storageErr("parse", "", errors.Wrapf(err, "could not decode %s", s.path))
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.store = NewInMemoryStore(s.opts...)
	for _, key := range keys {
		rec := records[key]
		if rec == nil {
			log.Warn().Str("path", s.path).Str("session", key).Msg("Skipping empty session record")
			continue
		}
		// the map key is authoritative, in the same normalized form Save uses
		name, err := NormalizeName(key)
		if err != nil {
			log.Warn().Str("path", s.path).Str("session", key).Msg("Skipping session record with blank name")
			continue
		}
		if prev, ok := s.store.records[name]; ok {
			if prev.LastModified.After(rec.LastModified) {
				log.Warn().Str("path", s.path).Str("session", name).Str("key", key).Msg("Dropping older duplicate session record")
				continue
			}
			log.Warn().Str("path", s.path).Str("session", name).Str("key", key).Msg("Replacing older duplicate session record")
		}
		rec.Name = name
		s.store.records[name] = rec
	}
	log.Debug().Str("path", s.path).Int("sessions", len(s.store.records)).Msg("Loaded sessions from disk")
	return nil
}

func (s *JSONFileStore) persistLocked() error {
	b, err := json.MarshalIndent(s.store.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}
