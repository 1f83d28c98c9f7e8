package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppDir       = "hush"
	lastPathFile = "last_vault"
)

// LastPath is the config record remembering the most recently opened vault.
// It holds a single line: the absolute path of the vault file.
type LastPath struct {
	file string
}

// NewLastPath stores the record at file
func NewLastPath(file string) *LastPath {
	return &LastPath{file: file}
}

// DefaultLastPath stores the record in the per-user config directory
func DefaultLastPath() (*LastPath, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	return NewLastPath(filepath.Join(dir, AppDir, lastPathFile)), nil
}

// File returns where the record lives
func (l *LastPath) File() string {
	return l.file
}

// Read returns the remembered vault path. ok is false when nothing is
// remembered or the remembered file is no longer a readable regular file.
func (l *LastPath) Read() (path string, ok bool, err error) {
	data, err := os.ReadFile(l.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read last vault path: %w", err)
	}

	path = strings.TrimSpace(string(data))
	if path == "" {
		return "", false, nil
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return path, false, nil
	}
	return path, true, nil
}

// Write remembers path, stored in absolute form
func (l *LastPath) Write(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(l.file), DirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(l.file, []byte(abs+"\n"), FilePerm); err != nil {
		return fmt.Errorf("failed to write last vault path: %w", err)
	}
	return nil
}

// Forget deletes the record. Forgetting an absent record is not an error.
func (l *LastPath) Forget() error {
	if err := os.Remove(l.file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to forget last vault path: %w", err)
	}
	return nil
}
