package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-go-golems/replayer/pkg/transcript"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSessionsSchemaV1 = `
CREATE TABLE IF NOT EXISTS sessions (
    name TEXT PRIMARY KEY,
    payload_json TEXT NOT NULL,
    last_modified_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS sessions_last_modified ON sessions (last_modified_ms DESC);
`

// SQLiteStore keeps one row per session with the transcript as a JSON payload.
type SQLiteStore struct {
	mu     sync.RWMutex
	dsn    string
	db     *sql.DB
	opts   *storeOptions
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dsn string, options ...StoreOption) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, &ValidationError{Field: "dsn", Reason: "sqlite session store: empty dsn"}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr("open", "", err)
	}

	s := &SQLiteStore{
		dsn:  dsn,
		db:   db,
		opts: newStoreOptions(options...),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, storageErr("migrate", "", err)
	}
	return s, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, t *transcript.Transcript) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if t == nil {
		t = transcript.New()
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "could not encode transcript")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (name, payload_json, last_modified_ms)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET payload_json = excluded.payload_json, last_modified_ms = excluded.last_modified_ms`,
		n,
		string(payload),
		s.opts.now().UnixMilli(),
	)
	return storageErr("save", n, err)
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*transcript.Transcript, bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return nil, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ensureOpen(); err != nil {
		return nil, false, err
	}

	var payload string
	err = s.db.QueryRowContext(ctx, `SELECT payload_json FROM sessions WHERE name = ?`, n).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("load", n, err)
	}

	t, err := transcript.Parse([]byte(payload))
	if err != nil {
		return nil, false, storageErr("load", n, err)
	}
	return t, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, last_modified_ms FROM sessions ORDER BY last_modified_ms DESC`)
	if err != nil {
		return nil, storageErr("list", "", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ret := []Summary{}
	for rows.Next() {
		var name string
		var ms int64
		if err := rows.Scan(&name, &ms); err != nil {
			return nil, storageErr("list", "", err)
		}
		ret = append(ret, Summary{ID: name, Name: name, LastModified: time.UnixMilli(ms).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", "", err)
	}
	return ret, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) (bool, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, n)
	if err != nil {
		return false, storageErr("delete", n, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("delete", n, err)
	}
	return affected > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	if s.db == nil {
		return fmt.Errorf("sqlite session store: db is nil")
	}
	_, err := s.db.Exec(sqliteSessionsSchemaV1)
	return err
}

func (s *SQLiteStore) ensureOpen() error {
	if s.closed {
		return ErrClosed
	}
	if s.db == nil {
		return fmt.Errorf("sqlite session store db is nil")
	}
	return nil
}

func SQLiteDSNForFile(path string) (string, error) {
	if path == "" {
		return "", &ValidationError{Field: "path", Reason: "sqlite session store: empty path"}
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}
