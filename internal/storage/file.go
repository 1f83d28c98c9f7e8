package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	Magic        = "HUSH"
	MagicSize    = len(Magic)
	SaltSize     = 16
	HeaderSize   = MagicSize + SaltSize
	FileExt      = ".hush"
	DefaultFile  = "keepit.hush"
	FilePerm     = 0600 // owner rw only
	DirPerm      = 0700 // owner rwx only
	lockSuffix   = ".lock"
	lockRetry    = 50 * time.Millisecond
	lockDeadline = 2 * time.Second
)

var (
	ErrNotAVault = errors.New("not a hush vault")
	ErrLocked    = errors.New("vault is locked by another process")
)

// VaultFile is the on-disk form of a vault: magic, salt, sealed record buffer.
type VaultFile struct {
	Salt       []byte
	Ciphertext []byte
}

// Marshal lays the file out as magic|salt|ciphertext
func (v *VaultFile) Marshal() ([]byte, error) {
	if len(v.Salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(v.Salt))
	}
	out := make([]byte, 0, HeaderSize+len(v.Ciphertext))
	out = append(out, Magic...)
	out = append(out, v.Salt...)
	out = append(out, v.Ciphertext...)
	return out, nil
}

// ParseVaultFile splits raw file bytes into salt and ciphertext.
// Data without the magic header is ErrNotAVault; a header cut short
// inside the salt is ErrTruncated.
func ParseVaultFile(data []byte) (*VaultFile, error) {
	if len(data) < MagicSize || !bytes.Equal(data[:MagicSize], []byte(Magic)) {
		return nil, ErrNotAVault
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("vault header: %w", ErrTruncated)
	}
	return &VaultFile{
		Salt:       append([]byte(nil), data[MagicSize:HeaderSize]...),
		Ciphertext: append([]byte(nil), data[HeaderSize:]...),
	}, nil
}

// lockFile takes the advisory lock guarding path for the duration of one read
// or write. Readers share the lock; a writer holds it alone.
func lockFile(ctx context.Context, path string, shared bool) (*flock.Flock, error) {
	lock := flock.New(path + lockSuffix)

	ctx, cancel := context.WithTimeout(ctx, lockDeadline)
	defer cancel()

	try := lock.TryLockContext
	if shared {
		try = lock.TryRLockContext
	}
	locked, err := try(ctx, lockRetry)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return lock, nil
}

// ReadVaultFile reads and parses the vault at path under a shared lock.
// When the lock file cannot be created, as in a read-only directory, the
// vault is read without it.
func ReadVaultFile(ctx context.Context, path string) (*VaultFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	lock, err := lockFile(ctx, path, true)
	switch {
	case errors.Is(err, ErrLocked), errors.Is(err, context.Canceled):
		return nil, err
	case err != nil:
		slog.Warn("reading vault without lock", "path", path, "error", err)
	default:
		defer lock.Unlock()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}
	return ParseVaultFile(data)
}

// WriteVaultFile atomically replaces the vault at path.
// The data goes to a temp file in the same directory, is synced, then renamed
// over the target, so a crash never leaves a half-written vault behind.
func WriteVaultFile(ctx context.Context, path string, v *VaultFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := v.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock, err := lockFile(ctx, path, false)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close vault: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace vault: %w", err)
	}
	return nil
}
