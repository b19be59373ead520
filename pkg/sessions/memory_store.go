package sessions

import (
	"context"
	"sync"

	"github.com/go-go-golems/replayer/pkg/transcript"
)

// InMemoryStore is a thread-safe Store that keeps deep copies of transcripts.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	opts    *storeOptions
	closed  bool
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore(options ...StoreOption) *InMemoryStore {
	return &InMemoryStore{
		records: map[string]*Record{},
		opts:    newStoreOptions(options...),
	}
}

func (s *InMemoryStore) Save(_ context.Context, name string, t *transcript.Transcript) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if t == nil {
		t = transcript.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records[n] = &Record{
		Name:         n,
		LastModified: s.opts.now(),
		Data:         t.Clone(),
	}
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, name string) (*transcript.Transcript, bool, error) {
	rec, ok, err := s.get(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return rec.Data.Clone(), true, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ret := make([]Summary, 0, len(s.records))
	for _, rec := range s.records {
		ret = append(ret, rec.Summary())
	}
	sortSummaries(ret)
	return ret, nil
}

func (s *InMemoryStore) Delete(_ context.Context, name string) (bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if _, ok := s.records[n]; !ok {
		return false, nil
	}
	delete(s.records, n)
	return true, nil
}

func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *InMemoryStore) get(name string) (*Record, bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	rec, ok := s.records[n]
	if !ok || rec == nil {
		return nil, false, nil
	}
	return rec, true, nil
}

// snapshot returns copies of all records, used by the file store to persist.
func (s *InMemoryStore) snapshot() map[string]*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make(map[string]*Record, len(s.records))
	for k, v := range s.records {
		ret[k] = v
	}
	return ret
}

// restore puts back a previous record (or removes the name when prev is nil).
func (s *InMemoryStore) restore(name string, prev *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.records, name)
		return
	}
	s.records[name] = prev
}
