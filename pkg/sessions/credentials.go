package sessions

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const maskedCredential = "****"

// Credential is an Anthropic API key. Its printed, logged and JSON forms are
// always masked; call Reveal to get the secret.
type Credential string

func NewCredential(s string) Credential {
	return Credential(strings.TrimSpace(s))
}

func (c Credential) Reveal() string { return string(c) }

func (c Credential) IsZero() bool { return strings.TrimSpace(string(c)) == "" }

func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return maskedCredential
}

func (c Credential) GoString() string { return c.String() }

func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c Credential) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c Credential) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("set", !c.IsZero()).Str("value", c.String())
}

// CredentialStore keeps the credential for the lifetime of the process only.
// It is never written to disk.
type CredentialStore struct {
	mu         sync.RWMutex
	credential Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Save(c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = c
}

func (s *CredentialStore) Load() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential.IsZero() {
		return "", false
	}
	return s.credential, true
}

func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
}
