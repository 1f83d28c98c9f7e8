package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/illarion/hush/internal/crypto"
	"github.com/illarion/hush/internal/storage"
	"github.com/illarion/hush/internal/timer"
)

// DefaultExposureSeconds is how long a copied secret stays in the clipboard
const DefaultExposureSeconds = 10

// Engine is the vault engine: one store, at most one open vault file, and the
// clipboard exposure window. A process builds one Engine and hands it to its shell.
//
// Engine is not safe for concurrent use; the shell must serialize calls.
type Engine struct {
	store *Store

	// VaultOpen when open is true; the passphrase is kept only to re-derive
	// the key on autosave and is wiped when the vault is closed.
	open       bool
	path       string
	passphrase []byte
	dirty      bool

	lastPath   *storage.LastPath
	iterations int

	clipboard Clipboard
	tokens    TokenProvider
	exposure  *timer.Exposure
	exposeFor int

	logger *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLastPath remembers opened vaults in lp
func WithLastPath(lp *storage.LastPath) Option {
	return func(e *Engine) { e.lastPath = lp }
}

// WithIterations overrides the PBKDF2 iteration count.
// Vaults written with one count can only be opened with the same count.
func WithIterations(n int) Option {
	return func(e *Engine) { e.iterations = n }
}

// WithClipboard sets the clipboard capability
func WithClipboard(c Clipboard) Option {
	return func(e *Engine) { e.clipboard = c }
}

// WithTokens sets the hardware token capability
func WithTokens(t TokenProvider) Option {
	return func(e *Engine) { e.tokens = t }
}

// WithExposure sets how many ticks a copied secret stays in the clipboard
// and how long one tick lasts
func WithExposure(ticks int, interval time.Duration) Option {
	return func(e *Engine) {
		if ticks > 0 {
			e.exposeFor = ticks
		}
		e.exposure = timer.New(interval, e.clearClipboard)
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine with no vault open
func New(opts ...Option) *Engine {
	e := &Engine{
		store:      NewStore(),
		iterations: crypto.DefaultIters,
		exposeFor:  DefaultExposureSeconds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.exposure == nil {
		e.exposure = timer.New(timer.DefaultInterval, e.clearClipboard)
	}
	return e
}

// CurrentPath returns the open vault's path
func (e *Engine) CurrentPath() (string, bool) {
	return e.path, e.open
}

// IsDirty reports whether memory holds changes not yet written to disk
func (e *Engine) IsDirty() bool {
	return e.dirty
}

// Len returns the number of records in memory
func (e *Engine) Len() int {
	return e.store.Len()
}

// List yields the records matching filter in display order
func (e *Engine) List(filter string) iter.Seq2[int, RecordView] {
	return e.store.List(filter)
}

// Views collects List into a slice
func (e *Engine) Views(filter string) []RecordView {
	return e.store.Views(filter)
}

// Records returns a copy of every record in insertion order
func (e *Engine) Records() []storage.Record {
	return e.store.Records()
}

// Exposure exposes the clipboard countdown so the shell can show remaining time
func (e *Engine) Exposure() *timer.Exposure {
	return e.exposure
}

// Open loads the vault at path. On any failure the store and the current
// vault are left exactly as they were.
func (e *Engine) Open(ctx context.Context, path string, passphrase []byte) error {
	if path == "" {
		return ErrPathRequired
	}

	vf, err := storage.ReadVaultFile(ctx, path)
	if err != nil {
		return translateReadError(err)
	}

	kdf := &crypto.KDF{Salt: vf.Salt, Iterations: e.iterations}
	key, err := kdf.DeriveKey(passphrase)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer crypto.ClearBytes(key)

	plaintext, err := crypto.Open(key, vf.Ciphertext)
	if err != nil {
		e.logger.Info("vault open rejected", "path", path)
		return ErrWrongPasswordOrCorrupt
	}
	defer crypto.ClearBytes(plaintext)

	records, err := storage.DecodeRecords(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	e.store.ReplaceAll(records)
	e.setOpen(path, passphrase)
	e.dirty = false
	e.remember(path)

	e.logger.Info("vault opened", "path", path, "records", len(records))
	return nil
}

func translateReadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotAVault):
		return ErrNotAVault
	case errors.Is(err, storage.ErrTruncated):
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	case errors.Is(err, storage.ErrLocked):
		return ErrVaultLocked
	default:
		return fmt.Errorf("failed to open vault: %w", err)
	}
}

// SaveAs encrypts the store under passphrase with a fresh salt and writes it
// to path. On success path and passphrase become the open vault; on failure
// nothing changes.
func (e *Engine) SaveAs(ctx context.Context, path string, passphrase []byte) error {
	if path == "" {
		return ErrPathRequired
	}
	if len(passphrase) == 0 {
		return ErrPassphraseRequired
	}

	kdf, err := crypto.NewKDF()
	if err != nil {
		return fmt.Errorf("failed to create KDF: %w", err)
	}
	kdf.Iterations = e.iterations

	key, err := kdf.DeriveKey(passphrase)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer crypto.ClearBytes(key)

	plaintext := storage.EncodeRecords(e.store.Records())
	defer crypto.ClearBytes(plaintext)

	ciphertext, err := crypto.Seal(key, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt vault: %w", err)
	}

	vf := &storage.VaultFile{Salt: kdf.Salt, Ciphertext: ciphertext}
	if err := storage.WriteVaultFile(ctx, path, vf); err != nil {
		if errors.Is(err, storage.ErrLocked) {
			return ErrVaultLocked
		}
		return fmt.Errorf("failed to save vault: %w", err)
	}

	e.setOpen(path, passphrase)
	e.dirty = false
	e.remember(path)

	e.logger.Debug("vault saved", "path", path, "records", e.store.Len())
	return nil
}

// Autosave rewrites the open vault. With no vault open it does nothing.
func (e *Engine) Autosave(ctx context.Context) error {
	if !e.open {
		return nil
	}
	if err := e.SaveAs(ctx, e.path, e.passphrase); err != nil {
		e.logger.Warn("autosave failed", "path", e.path, "error", err)
		return err
	}
	return nil
}

// ChangePassphrase re-encrypts the open vault under a new passphrase
func (e *Engine) ChangePassphrase(ctx context.Context, passphrase []byte) error {
	if !e.open {
		return ErrNoVaultOpen
	}
	return e.SaveAs(ctx, e.path, passphrase)
}

// TryOpenLast reopens the remembered vault, asking prompter for its
// passphrase. It returns false without error when nothing is remembered, the
// remembered file is gone, or the user cancels. Retrying after a wrong
// passphrase is up to the caller.
func (e *Engine) TryOpenLast(ctx context.Context, prompter PasswordPrompter) (bool, error) {
	if e.lastPath == nil {
		return false, nil
	}
	path, ok, err := e.lastPath.Read()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	passphrase, ok := prompter.PromptPassword("Password for " + path)
	if !ok {
		return false, nil
	}
	defer crypto.ClearBytes(passphrase)

	if err := e.Open(ctx, path, passphrase); err != nil {
		return false, err
	}
	return true, nil
}

// LastPath returns the remembered vault path, if any
func (e *Engine) LastPath() (string, bool) {
	if e.lastPath == nil {
		return "", false
	}
	path, ok, err := e.lastPath.Read()
	if err != nil {
		e.logger.Warn("failed to read last vault", "error", err)
		return "", false
	}
	return path, ok
}

// Forget drops the remembered vault path
func (e *Engine) Forget() error {
	if e.lastPath == nil {
		return nil
	}
	if err := e.lastPath.Forget(); err != nil {
		return err
	}
	e.logger.Info("forgot last vault")
	return nil
}

// NewVault closes the open vault and starts over with an empty store
func (e *Engine) NewVault() {
	e.cancelExposure()
	e.store.Clear()
	e.setClosed()
	e.dirty = false
}

// Close ends the session: any pending exposure is cleared right away and
// the passphrase is wiped.
func (e *Engine) Close() {
	e.cancelExposure()
	e.setClosed()
}

func (e *Engine) cancelExposure() {
	if e.exposure.Cancel() {
		e.clearClipboard()
	}
}

// Add appends rec and autosaves
func (e *Engine) Add(ctx context.Context, rec storage.Record) error {
	if err := e.store.Add(rec); err != nil {
		return err
	}
	return e.mutated(ctx)
}

// Update replaces the record at displayIndex and autosaves.
//
// While a gated record's token is absent only its title, login and favorite
// flag may change; an empty Secret keeps the stored one, as returned by Get.
func (e *Engine) Update(ctx context.Context, displayIndex int, rec storage.Record) error {
	old, err := e.store.Get(displayIndex)
	if err != nil {
		return err
	}
	if e.checkToken(old) != nil {
		if rec.Secret == "" {
			rec.Secret = old.Secret
		}
		if rec.Secret != old.Secret || rec.RequiresToken != old.RequiresToken || rec.TokenID != old.TokenID {
			return ErrTokenAbsent
		}
	}
	if err := e.store.Update(displayIndex, rec); err != nil {
		return err
	}
	return e.mutated(ctx)
}

// Remove deletes the record at displayIndex and autosaves
func (e *Engine) Remove(ctx context.Context, displayIndex int) (storage.Record, error) {
	rec, err := e.store.Remove(displayIndex)
	if err != nil {
		return storage.Record{}, err
	}
	return rec, e.mutated(ctx)
}

// ToggleFavorite flips the favorite flag of the record at displayIndex and
// returns the new value
func (e *Engine) ToggleFavorite(ctx context.Context, displayIndex int) (bool, error) {
	rec, err := e.store.Get(displayIndex)
	if err != nil {
		return false, err
	}
	rec.IsFavorite = !rec.IsFavorite
	if err := e.store.Update(displayIndex, rec); err != nil {
		return false, err
	}
	return rec.IsFavorite, e.mutated(ctx)
}

// Import appends every valid record and autosaves once.
// It returns how many records were added.
func (e *Engine) Import(ctx context.Context, records []storage.Record) (int, error) {
	added := 0
	for _, rec := range records {
		if e.store.Add(rec) == nil {
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	e.logger.Info("records imported", "count", added, "skipped", len(records)-added)
	return added, e.mutated(ctx)
}

// mutated marks memory as ahead of disk and autosaves. The mutation is kept
// even when the save fails.
func (e *Engine) mutated(ctx context.Context) error {
	e.dirty = true
	if err := e.Autosave(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}

// Get returns the record at displayIndex. The secret of a gated record is
// blank while its token is absent.
func (e *Engine) Get(displayIndex int) (storage.Record, error) {
	rec, err := e.store.Get(displayIndex)
	if err != nil {
		return storage.Record{}, err
	}
	if e.checkToken(rec) != nil {
		rec.Secret = ""
	}
	return rec, nil
}

// Secret reveals the secret at displayIndex, enforcing token gating
func (e *Engine) Secret(displayIndex int) (string, error) {
	rec, err := e.store.Get(displayIndex)
	if err != nil {
		return "", err
	}
	if err := e.checkToken(rec); err != nil {
		return "", err
	}
	return rec.Secret, nil
}

// CopySecret puts the secret at displayIndex on the clipboard and starts the
// exposure countdown, replacing any countdown already running
func (e *Engine) CopySecret(displayIndex int) error {
	secret, err := e.Secret(displayIndex)
	if err != nil {
		return err
	}
	if err := e.copy(secret); err != nil {
		return err
	}
	e.exposure.Start(e.exposeFor)
	return nil
}

// CopyLogin puts the login at displayIndex on the clipboard. Logins are not
// secret, so no countdown starts.
func (e *Engine) CopyLogin(displayIndex int) error {
	rec, err := e.store.Get(displayIndex)
	if err != nil {
		return err
	}
	return e.copy(rec.Login)
}

// Tokens lists the hardware tokens the shell can currently see
func (e *Engine) Tokens() []Token {
	if e.tokens == nil {
		return nil
	}
	return e.tokens.ListAvailableTokens()
}

func (e *Engine) checkToken(rec storage.Record) error {
	if !rec.Gated() {
		return nil
	}
	if e.tokens == nil || !e.tokens.IsTokenPresent(rec.TokenID) {
		return ErrTokenAbsent
	}
	return nil
}

func (e *Engine) copy(text string) error {
	if e.clipboard == nil {
		return ErrNoClipboard
	}
	if err := e.clipboard.CopyText(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// clearClipboard runs on the exposure goroutine when a countdown ends
func (e *Engine) clearClipboard() {
	if e.clipboard == nil {
		return
	}
	if err := e.clipboard.CopyText(""); err != nil {
		e.logger.Warn("failed to clear clipboard", "error", err)
	}
}

func (e *Engine) setOpen(path string, passphrase []byte) {
	// passphrase may alias e.passphrase during autosave, so copy before wiping
	kept := append([]byte(nil), passphrase...)
	crypto.ClearBytes(e.passphrase)
	e.passphrase = kept
	e.path = path
	e.open = true
}

func (e *Engine) setClosed() {
	crypto.ClearBytes(e.passphrase)
	e.passphrase = nil
	e.path = ""
	e.open = false
}

func (e *Engine) remember(path string) {
	if e.lastPath == nil {
		return
	}
	if err := e.lastPath.Write(path); err != nil {
		e.logger.Warn("failed to remember vault path", "path", path, "error", err)
	}
}
