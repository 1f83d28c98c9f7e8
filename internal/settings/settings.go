// Package settings loads the user's hush configuration from YAML.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/hush/internal/storage"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file inside the hush config directory
const FileName = "config.yaml"

// ConfigEnv overrides the settings file location
const ConfigEnv = "HUSH_CONFIG"

// Defaults
const (
	DefaultClipboardTimeout = 10
	DefaultLogLevel         = "warn"
	MaxClipboardTimeout     = 3600
)

var ErrInvalid = errors.New("invalid settings")

// Token declares a hardware token. It counts as present while Path exists,
// typically a mount point or a /dev/disk/by-id entry.
type Token struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// Settings is the contents of config.yaml
type Settings struct {
	ClipboardTimeout int     `yaml:"clipboard_timeout"`
	LogLevel         string  `yaml:"log_level"`
	LogFile          string  `yaml:"log_file"`
	DefaultVault     string  `yaml:"default_vault"`
	Tokens           []Token `yaml:"tokens"`
}

// Default returns the settings used when no file exists
func Default() *Settings {
	return &Settings{
		ClipboardTimeout: DefaultClipboardTimeout,
		LogLevel:         DefaultLogLevel,
		DefaultVault:     storage.DefaultFile,
	}
}

// DefaultPath returns $HUSH_CONFIG or <user config dir>/hush/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, storage.AppDir, FileName), nil
}

// Load reads settings from path. A missing file yields the defaults; fields
// left out of the file keep their default values.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path with owner-only permissions
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), storage.DirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, storage.FilePerm); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks value ranges and token declarations
func (s *Settings) Validate() error {
	if s.ClipboardTimeout < 1 || s.ClipboardTimeout > MaxClipboardTimeout {
		return fmt.Errorf("%w: clipboard_timeout must be between 1 and %d", ErrInvalid, MaxClipboardTimeout)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}

	seen := make(map[string]bool, len(s.Tokens))
	for i, t := range s.Tokens {
		if t.ID == "" || t.Path == "" {
			return fmt.Errorf("%w: token %d needs both id and path", ErrInvalid, i+1)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate token id %q", ErrInvalid, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, level)
	}
}
