// Package settings holds the runtime configuration of the replayer: how to
// reach the Anthropic API and where to keep saved sessions.
package settings

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultAPIVersion = "2023-06-01"
	DefaultModel      = "claude-3-5-sonnet-latest"
	DefaultMaxTokens  = 1024
	DefaultTimeout    = 60 * time.Second
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

type ClaudeSettings struct {
	BaseURL    string        `yaml:"base-url,omitempty" mapstructure:"base-url"`
	APIVersion string        `yaml:"api-version,omitempty" mapstructure:"api-version"`
	Model      string        `yaml:"model,omitempty" mapstructure:"model"`
	MaxTokens  int           `yaml:"max-tokens,omitempty" mapstructure:"max-tokens"`
	Timeout    time.Duration `yaml:"-" mapstructure:"-"`
	// AllowHTTP lifts the https-only and public-host checks on BaseURL, for
	// local proxies and tests.
	AllowHTTP bool `yaml:"allow-http,omitempty" mapstructure:"allow-http"`
}

// UnmarshalYAML reads timeout as a number of seconds.
func (cs *ClaudeSettings) UnmarshalYAML(value *yaml.Node) error {
	type Alias ClaudeSettings
	if err := value.Decode((*Alias)(cs)); err != nil {
		return err
	}
	aux := struct {
		Timeout *int `yaml:"timeout,omitempty"`
	}{}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.Timeout != nil {
		cs.Timeout = time.Duration(*aux.Timeout) * time.Second
	}
	return nil
}

func (cs ClaudeSettings) MarshalYAML() (interface{}, error) {
	type Alias ClaudeSettings
	return &struct {
		Timeout int `yaml:"timeout,omitempty"`
		Alias   `yaml:",inline"`
	}{
		Timeout: int(cs.Timeout / time.Second),
		Alias:   Alias(cs),
	}, nil
}

type StoreSettings struct {
	Backend string `yaml:"backend,omitempty" mapstructure:"backend"`
	Path    string `yaml:"path,omitempty" mapstructure:"path"`
}

// ResolvedPath returns Path, or the default location for the backend when
// Path is empty.
func (ss *StoreSettings) ResolvedPath() (string, error) {
	if ss.Path != "" {
		return ss.Path, nil
	}
	return DefaultStorePath(ss.Backend)
}

type Settings struct {
	Claude *ClaudeSettings `yaml:"claude,omitempty"`
	Store  *StoreSettings  `yaml:"store,omitempty"`
}

func NewSettings() *Settings {
	return &Settings{
		Claude: &ClaudeSettings{
			BaseURL:    DefaultBaseURL,
			APIVersion: DefaultAPIVersion,
			Model:      DefaultModel,
			MaxTokens:  DefaultMaxTokens,
			Timeout:    DefaultTimeout,
		},
		Store: &StoreSettings{
			Backend: BackendFile,
		},
	}
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// Validate checks the values that cannot be defaulted.
func (s *Settings) Validate() error {
	if s.Claude == nil || s.Store == nil {
		return errors.New("incomplete settings")
	}
	if s.Claude.MaxTokens <= 0 {
		return errors.Errorf("claude.max-tokens must be positive, got %d", s.Claude.MaxTokens)
	}
	switch s.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendBolt:
	default:
		return errors.Errorf("unknown store backend %q", s.Store.Backend)
	}
	return nil
}

// LoadFromViper overlays the keys set in v on top of the defaults.
func LoadFromViper(v *viper.Viper) (*Settings, error) {
	s := NewSettings()
	if v == nil {
		return s, nil
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			if val := strings.TrimSpace(v.GetString(key)); val != "" {
				*dst = val
			}
		}
	}

	setString("claude.base-url", &s.Claude.BaseURL)
	setString("claude.api-version", &s.Claude.APIVersion)
	setString("claude.model", &s.Claude.Model)
	if v.IsSet("claude.max-tokens") {
		s.Claude.MaxTokens = v.GetInt("claude.max-tokens")
	}
	if v.IsSet("claude.timeout") {
		s.Claude.Timeout = time.Duration(v.GetInt("claude.timeout")) * time.Second
	}
	if v.IsSet("claude.allow-http") {
		s.Claude.AllowHTTP = v.GetBool("claude.allow-http")
	}
	setString("store.backend", &s.Store.Backend)
	setString("store.path", &s.Store.Path)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads a YAML settings file. Missing keys keep their defaults.
func LoadFile(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read settings file %s", path)
	}
	s := NewSettings()
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, errors.Wrapf(err, "could not parse settings file %s", path)
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid settings file %s", path)
	}
	return s, nil
}

// ConfigDir is where the replayer keeps its configuration and sessions.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not resolve user config dir")
	}
	return filepath.Join(dir, "replayer"), nil
}

func DefaultStorePath(backend string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	switch backend {
	case BackendSQLite:
		return filepath.Join(dir, "sessions.db"), nil
	case BackendBolt:
		return filepath.Join(dir, "sessions.bolt"), nil
	default:
		return filepath.Join(dir, "sessions.json"), nil
	}
}
