package sessions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltStore keeps each session as a JSON record in a BoltDB bucket keyed by name.
type BoltStore struct {
	mu     sync.RWMutex
	path   string
	db     *bolt.DB
	opts   *storeOptions
	closed bool
}

var _ Store = (*BoltStore)(nil)

func NewBoltStore(path string, options ...StoreOption) (*BoltStore, error) {
	if path == "" {
		return nil, &ValidationError{Field: "path", Reason: "bolt session store path is required"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("open", "", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, storageErr("open", "", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, storageErr("open", "", err)
	}
	return &BoltStore{
		path: path,
		db:   db,
		opts: newStoreOptions(options...),
	}, nil
}

func (s *BoltStore) Save(_ context.Context, name string, t *transcript.Transcript) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if t == nil {
		t = transcript.New()
	}
	b, err := json.Marshal(&Record{Name: n, LastModified: s.opts.now(), Data: t})
	if err != nil {
		return errors.Wrap(err, "could not encode session record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(n), b)
	})
	return storageErr("save", n, err)
}

func (s *BoltStore) Load(_ context.Context, name string) (*transcript.Transcript, bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return nil, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	var rec *Record
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(n))
		if v == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, false, storageErr("load", n, err)
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec.Data, true, nil
}

func (s *BoltStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ret := []Summary{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(k, v []byte) error {
			var header recordJSON
			if err := json.Unmarshal(v, &header); err != nil {
				return errors.Wrapf(err, "corrupt record %q", string(k))
			}
			ts, err := time.Parse(time.RFC3339Nano, header.LastModified)
			if err != nil {
				return errors.Wrapf(err, "corrupt record %q", string(k))
			}
			ret = append(ret, Summary{ID: string(k), Name: string(k), LastModified: ts})
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("list", "", err)
	}
	sortSummaries(ret)
	return ret, nil
}

func (s *BoltStore) Delete(_ context.Context, name string) (bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	existed := false
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(n)) == nil {
			return nil
		}
		existed = true
		return b.Delete([]byte(n))
	})
	if err != nil {
		return false, storageErr("delete", n, err)
	}
	return existed, nil
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
