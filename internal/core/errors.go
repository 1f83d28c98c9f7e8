package core

import "errors"

// Store errors reflect caller misuse and are returned as-is.
var (
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrIndexOutOfRange = errors.New("no record at that position")
)

// Open errors. Cipher and codec failures are folded into these so callers
// only branch on a small, stable set.
var (
	ErrNotAVault              = errors.New("file is not a hush vault")
	ErrWrongPasswordOrCorrupt = errors.New("incorrect password or corrupted file")
	ErrCorrupt                = errors.New("vault contents are corrupted")
	ErrVaultLocked            = errors.New("vault is in use by another process")
)

// Save errors
var (
	ErrPathRequired       = errors.New("vault path required")
	ErrPassphraseRequired = errors.New("passphrase required")
	ErrNotPersisted       = errors.New("changes kept in memory but not saved to disk")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// Engine state and capability errors
var (
	ErrNoVaultOpen = errors.New("no vault is open")
	ErrTokenAbsent = errors.New("hardware token not present")
	ErrNoClipboard = errors.New("clipboard not available")
)
