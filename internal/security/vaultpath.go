package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/illarion/hush/internal/storage"
)

var (
	ErrEmptyPath  = errors.New("empty path not allowed")
	ErrNotRegular = errors.New("not a regular file")
)

// NormalizeVaultPath cleans a user-provided vault path, makes it absolute
// and appends the .hush extension when the name has none. An existing path
// must be a regular file; a missing one is fine.
func NormalizeVaultPath(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	abs, err := filepath.Abs(filepath.Clean(userPath))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	if filepath.Ext(abs) == "" {
		abs += storage.FileExt
	}

	info, err := os.Lstat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return abs, nil
	case err != nil:
		return "", fmt.Errorf("failed to stat %s: %w", abs, err)
	case !info.Mode().IsRegular():
		return "", fmt.Errorf("%w: %s", ErrNotRegular, abs)
	}
	return abs, nil
}

// CheckPermissions lists what is wrong with the protection of an existing
// vault file: a symlinked vault, or a file or directory others can reach.
func CheckPermissions(path string) ([]string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var warnings []string
	if info.Mode()&fs.ModeSymlink != 0 {
		warnings = append(warnings, fmt.Sprintf("%s is a symlink; writes replace the link with a regular file", path))
		if info, err = os.Stat(path); err != nil {
			return warnings, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if perm := info.Mode().Perm(); perm&0077 != 0 {
		warnings = append(warnings, fmt.Sprintf("%s has mode %04o; expected %04o (chmod 600 %s)",
			path, perm, storage.FilePerm, path))
	}

	dir := filepath.Dir(path)
	if dirInfo, err := os.Stat(dir); err == nil && dirInfo.Mode().Perm()&0002 != 0 {
		warnings = append(warnings, fmt.Sprintf("%s is world-writable; others can replace the vault", dir))
	}

	return warnings, nil
}
