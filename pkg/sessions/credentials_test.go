package sessions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialIsMasked(t *testing.T) {
	c := NewCredential("  sk-ant-secret  ")
	assert.Equal(t, "sk-ant-secret", c.Reveal())
	assert.False(t, c.IsZero())

	assert.Equal(t, "****", c.String())
	assert.Equal(t, "****", fmt.Sprintf("%v", c))
	assert.Equal(t, "****", fmt.Sprintf("%#v", c))

	b, err := json.Marshal(map[string]Credential{"key": c})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("api_key", c).Msg("configured")
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), "****")
}

func TestCredentialStore(t *testing.T) {
	s := NewCredentialStore()
	_, ok := s.Load()
	assert.False(t, ok)

	s.Save(NewCredential("   "))
	_, ok = s.Load()
	assert.False(t, ok)

	s.Save(NewCredential("k"))
	c, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, "k", c.Reveal())

	s.Clear()
	_, ok = s.Load()
	assert.False(t, ok)
}
