package sessions

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/pkg/errors"
)

// Summary is the listing view of a saved session. ID and Name are identical.
type Summary struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`
}

// Store persists transcripts under user-chosen names.
//
// Save overwrites (last write wins), Load returns a detached copy, List is
// ordered by LastModified, newest first, and Delete reports whether a record
// existed. Stores assume a single writing process.
type Store interface {
	Save(ctx context.Context, name string, t *transcript.Transcript) error
	Load(ctx context.Context, name string) (*transcript.Transcript, bool, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, name string) (bool, error)
	Close() error
}

type storeOptions struct {
	now func() time.Time
}

type StoreOption func(*storeOptions)

// WithClock overrides the timestamp source used for LastModified.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func newStoreOptions(options ...StoreOption) *storeOptions {
	ret := &storeOptions{now: time.Now}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Record is a persisted session: {data, lastModified, name}.
type Record struct {
	Name         string
	LastModified time.Time
	Data         *transcript.Transcript
}

const lastModifiedLayout = "2006-01-02T15:04:05.000Z07:00"

type recordJSON struct {
	Data         json.RawMessage `json:"data"`
	LastModified string          `json:"lastModified"`
	Name         string          `json:"name"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	data := r.Data
	if data == nil {
		data = transcript.New()
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{
		Data:         b,
		LastModified: r.LastModified.UTC().Format(lastModifiedLayout),
		Name:         r.Name,
	})
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{Name: raw.Name}
	if raw.LastModified != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw.LastModified)
		if err != nil {
			return errors.Wrapf(err, "invalid lastModified for %q", raw.Name)
		}
		r.LastModified = ts
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		r.Data = transcript.New()
		return nil
	}
	data, err := transcript.Parse(raw.Data)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

func (r *Record) Summary() Summary {
	return Summary{ID: r.Name, Name: r.Name, LastModified: r.LastModified}
}

// NormalizeName trims the name and rejects empty ones.
func NormalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", &ValidationError{Field: "name", Reason: "session name must not be empty"}
	}
	return n, nil
}

func sortSummaries(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastModified.After(summaries[j].LastModified)
	})
}

// SuggestName proposes a default name for a freshly imported transcript.
func SuggestName(now time.Time) string {
	return "Chat " + now.Format("2006-01-02 15:04:05")
}
