package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewSettingsDefaults(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, DefaultModel, s.Claude.Model)
	assert.Equal(t, 1024, s.Claude.MaxTokens)
	assert.Equal(t, "2023-06-01", s.Claude.APIVersion)
	assert.Equal(t, BackendFile, s.Store.Backend)
	assert.NoError(t, s.Validate())
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("claude.model", "claude-3-opus-20240229")
	v.Set("claude.max-tokens", 2048)
	v.Set("claude.timeout", 5)
	v.Set("claude.allow-http", true)
	v.Set("store.backend", "sqlite")
	v.Set("store.path", "/tmp/x.db")
	v.Set("claude.base-url", "   ")

	s, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus-20240229", s.Claude.Model)
	assert.Equal(t, 2048, s.Claude.MaxTokens)
	assert.Equal(t, 5*time.Second, s.Claude.Timeout)
	assert.True(t, s.Claude.AllowHTTP)
	assert.Equal(t, BackendSQLite, s.Store.Backend)
	assert.Equal(t, "/tmp/x.db", s.Store.Path)
	assert.Equal(t, DefaultBaseURL, s.Claude.BaseURL)
}

func TestLoadFromViperRejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	v.Set("store.backend", "redis")
	_, err := LoadFromViper(v)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
claude:
  model: claude-3-haiku-20240307
  timeout: 10
store:
  backend: bolt
`), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku-20240307", s.Claude.Model)
	assert.Equal(t, 10*time.Second, s.Claude.Timeout)
	assert.Equal(t, DefaultMaxTokens, s.Claude.MaxTokens)
	assert.Equal(t, BackendBolt, s.Store.Backend)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestClaudeSettingsYAMLTimeoutSeconds(t *testing.T) {
	b, err := yaml.Marshal(NewSettings())
	require.NoError(t, err)
	assert.Contains(t, string(b), "timeout: 60")

	s := NewSettings()
	require.NoError(t, yaml.Unmarshal(b, s))
	assert.Equal(t, DefaultTimeout, s.Claude.Timeout)
}

func TestCloneIsDetached(t *testing.T) {
	s := NewSettings()
	c := s.Clone()
	c.Claude.Model = "other"
	c.Store.Path = "elsewhere"
	assert.Equal(t, DefaultModel, s.Claude.Model)
	assert.Equal(t, "", s.Store.Path)
}

func TestDefaultStorePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	p, err := DefaultStorePath(BackendSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sessions.db", filepath.Base(p))
	assert.Equal(t, "replayer", filepath.Base(filepath.Dir(p)))

	ss := &StoreSettings{Backend: BackendFile, Path: "/explicit.json"}
	p, err = ss.ResolvedPath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit.json", p)
}
