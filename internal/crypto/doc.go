// Package crypto provides cryptographic operations for hush vaults.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the master passphrase via PBKDF2
//   - 12-byte random nonce per Seal, prepended to the ciphertext
//   - Authenticated encryption: a wrong key and tampering are both ErrAuthFailed
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 16-byte random salt (stored unencrypted in the vault header, fresh per save)
//   - 210,000 iterations (OWASP minimum recommendation)
//
// Memory safety:
//   - Use ClearBytes() to zero keys and passphrases after use
package crypto
