// Package storage provides the on-disk formats for hush.
//
// A vault file is a flat byte layout:
//   - magic: the 4 bytes "HUSH"
//   - salt: 16 bytes, regenerated on every save
//   - ciphertext: AES-GCM sealed record buffer (see EncodeRecords)
//
// The record buffer is length-prefixed and little-endian. DecodeRecords is
// strict and never reads past the end of its input.
//
// Writes go through a temp file and rename, and both reads and writes hold an
// advisory lock on "<vault>.lock" so two processes never interleave.
//
// LastPath is the small config record remembering the most recently opened
// vault, one line of text in the per-user config directory.
package storage
