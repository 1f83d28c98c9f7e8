package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/illarion/hush/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIters = 1000

type fakeClipboard struct {
	mu     sync.Mutex
	text   string
	writes []string
	err    error
}

func (c *fakeClipboard) CopyText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.text = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *fakeClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *fakeClipboard) Clears() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.writes {
		if w == "" {
			n++
		}
	}
	return n
}

type fakeTokens map[string]bool

func (f fakeTokens) IsTokenPresent(id string) bool { return f[id] }

func (f fakeTokens) ListAvailableTokens() []Token {
	var out []Token
	for id, present := range f {
		if present {
			out = append(out, Token{Name: "key " + id, ID: id})
		}
	}
	return out
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	base := []Option{
		WithIterations(testIters),
		WithLastPath(storage.NewLastPath(filepath.Join(dir, "config", "last_vault"))),
	}
	return New(append(base, opts...)...), dir
}

func TestEngine_SaveOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")

	require.NoError(t, e.Add(ctx, rec("A", false)))
	require.NoError(t, e.Add(ctx, storage.Record{Title: "B", Login: "bob", Secret: "pw", IsFavorite: true, RequiresToken: true, TokenID: "usb-1"}))
	assert.True(t, e.IsDirty(), "nothing open yet, autosave is a no-op")

	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	assert.False(t, e.IsDirty())
	got, open := e.CurrentPath()
	assert.True(t, open)
	assert.Equal(t, path, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(storage.FilePerm), info.Mode().Perm())

	want := e.Records()

	other, _ := newTestEngine(t)
	require.NoError(t, other.Open(ctx, path, []byte("pw")))
	assert.Equal(t, want, other.Records())
	assert.False(t, other.IsDirty())
}

func TestEngine_SaveUsesFreshSalt(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")

	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotEqual(t, first[:storage.HeaderSize], second[:storage.HeaderSize])
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "v.hush")

	bank := storage.Record{Title: "Bank", Login: "alice", Secret: "p@ss"}
	require.NoError(t, e.Add(ctx, bank))
	require.NoError(t, e.SaveAs(ctx, path, []byte("master1")))
	e.Close()

	reopened, _ := newTestEngine(t)
	require.NoError(t, reopened.Open(ctx, path, []byte("master1")))
	assert.Equal(t, []storage.Record{bank}, reopened.Records())
	views := reopened.Views("")
	require.Len(t, views, 1)
	assert.Equal(t, RecordView{Index: 1, Title: "Bank", Login: "alice"}, views[0])

	// mutations after opening autosave
	require.NoError(t, reopened.Add(ctx, rec("Mail", false)))
	assert.False(t, reopened.IsDirty())

	wrong, _ := newTestEngine(t)
	err := wrong.Open(ctx, path, []byte("wrong"))
	assert.ErrorIs(t, err, ErrWrongPasswordOrCorrupt)
	assert.Zero(t, wrong.Len())
	_, open := wrong.CurrentPath()
	assert.False(t, open)
}

func TestEngine_OpenFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")

	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	require.NoError(t, e.Add(ctx, rec("A", false)))

	junk := filepath.Join(dir, "junk.hush")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a vault"), 0600))

	tests := []struct {
		name string
		path string
		pass string
		want error
	}{
		{name: "wrong password", path: path, pass: "bad", want: ErrWrongPasswordOrCorrupt},
		{name: "not a vault", path: junk, pass: "pw", want: ErrNotAVault},
		{name: "empty path", path: "", pass: "pw", want: ErrPathRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Open(ctx, tt.path, []byte(tt.pass))
			assert.ErrorIs(t, err, tt.want)

			current, open := e.CurrentPath()
			assert.True(t, open)
			assert.Equal(t, path, current)
			assert.Equal(t, []string{"A"}, titles(e.Views("")))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		err := e.Open(ctx, filepath.Join(dir, "missing.hush"), []byte("pw"))
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, 1, e.Len())
	})
}

func TestEngine_OpenTruncatedAndTampered(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	short := filepath.Join(dir, "short.hush")
	require.NoError(t, os.WriteFile(short, data[:storage.MagicSize+3], 0600))
	assert.ErrorIs(t, e.Open(ctx, short, []byte("pw")), ErrCorrupt)

	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0xff
	bad := filepath.Join(dir, "tampered.hush")
	require.NoError(t, os.WriteFile(bad, tampered, 0600))
	assert.ErrorIs(t, e.Open(ctx, bad, []byte("pw")), ErrWrongPasswordOrCorrupt)
}

func TestEngine_SaveAsValidation(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)

	assert.ErrorIs(t, e.SaveAs(ctx, "", []byte("pw")), ErrPathRequired)
	assert.ErrorIs(t, e.SaveAs(ctx, filepath.Join(dir, "v.hush"), nil), ErrPassphraseRequired)
	_, open := e.CurrentPath()
	assert.False(t, open)
}

func TestEngine_FailedSaveAsKeepsState(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	require.NoError(t, e.Add(ctx, rec("A", false)))

	// parent is a regular file, so the directory cannot be created
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	err := e.SaveAs(ctx, filepath.Join(blocker, "v.hush"), []byte("other"))
	require.Error(t, err)

	current, open := e.CurrentPath()
	assert.True(t, open)
	assert.Equal(t, path, current)
	assert.Equal(t, 1, e.Len())

	// the old passphrase is still the one in use
	e.Close()
	again, _ := newTestEngine(t)
	require.NoError(t, again.Open(ctx, path, []byte("pw")))
	assert.Equal(t, 1, again.Len())
}

func TestEngine_AutosaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))

	// a directory in place of the vault makes the final rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0600))

	err := e.Add(ctx, rec("A", false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, 1, e.Len())
	assert.True(t, e.IsDirty())
}

func TestEngine_MutationsAutosave(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))

	reload := func() []storage.Record {
		t.Helper()
		other, _ := newTestEngine(t)
		require.NoError(t, other.Open(ctx, path, []byte("pw")))
		return other.Records()
	}

	require.NoError(t, e.Add(ctx, rec("A", false)))
	require.NoError(t, e.Add(ctx, rec("B", false)))
	assert.Len(t, reload(), 2)

	e.Views("")
	fav, err := e.ToggleFavorite(ctx, 2)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, reload()[1].IsFavorite)

	e.Views("")
	require.NoError(t, e.Update(ctx, 2, storage.Record{Title: "A2", Login: "l"}))
	assert.Equal(t, "A2", reload()[0].Title)

	e.Views("")
	removed, err := e.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", removed.Title)
	assert.Equal(t, []storage.Record{{Title: "A2", Login: "l"}}, reload())

	assert.ErrorIs(t, e.Add(ctx, storage.Record{}), ErrEmptyTitle)
	_, err = e.Remove(ctx, 9)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEngine_ChangePassphrase(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")

	assert.ErrorIs(t, e.ChangePassphrase(ctx, []byte("new")), ErrNoVaultOpen)

	require.NoError(t, e.SaveAs(ctx, path, []byte("old")))
	require.NoError(t, e.Add(ctx, rec("A", false)))
	require.NoError(t, e.ChangePassphrase(ctx, []byte("new")))

	other, _ := newTestEngine(t)
	assert.ErrorIs(t, other.Open(ctx, path, []byte("old")), ErrWrongPasswordOrCorrupt)
	require.NoError(t, other.Open(ctx, path, []byte("new")))
	assert.Equal(t, 1, other.Len())
}

func TestEngine_TryOpenLast(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	lp := storage.NewLastPath(filepath.Join(dir, "last_vault"))
	path := filepath.Join(dir, "vault.hush")

	first := New(WithIterations(testIters), WithLastPath(lp))
	require.NoError(t, first.SaveAs(ctx, path, []byte("pw")))
	require.NoError(t, first.Add(ctx, rec("A", false)))

	prompts := 0
	prompter := PasswordPrompterFunc(func(title string) ([]byte, bool) {
		prompts++
		assert.Contains(t, title, "vault.hush")
		return []byte("pw"), true
	})

	second := New(WithIterations(testIters), WithLastPath(lp))
	ok, err := second.TryOpenLast(ctx, prompter)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, prompts)
	assert.Equal(t, 1, second.Len())

	cancel := PasswordPrompterFunc(func(string) ([]byte, bool) { return nil, false })
	third := New(WithIterations(testIters), WithLastPath(lp))
	ok, err = third.TryOpenLast(ctx, cancel)
	require.NoError(t, err)
	assert.False(t, ok)

	wrong := PasswordPrompterFunc(func(string) ([]byte, bool) { return []byte("bad"), true })
	ok, err = third.TryOpenLast(ctx, wrong)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrWrongPasswordOrCorrupt)

	require.NoError(t, third.Forget())
	ok, err = third.TryOpenLast(ctx, prompter)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, prompts, "nothing remembered, no prompt")
}

func TestEngine_TryOpenLastMissingFile(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))
	require.NoError(t, os.Remove(path))

	ok, err := e.TryOpenLast(ctx, PasswordPrompterFunc(func(string) ([]byte, bool) {
		t.Fatal("must not prompt for a missing file")
		return nil, false
	}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_NewVault(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	require.NoError(t, e.SaveAs(ctx, filepath.Join(dir, "vault.hush"), []byte("pw")))
	require.NoError(t, e.Add(ctx, rec("A", false)))

	e.NewVault()
	assert.Zero(t, e.Len())
	_, open := e.CurrentPath()
	assert.False(t, open)

	// nothing open, so adding only marks memory dirty
	require.NoError(t, e.Add(ctx, rec("B", false)))
	assert.True(t, e.IsDirty())
}

func TestEngine_TokenGating(t *testing.T) {
	ctx := context.Background()
	tokens := fakeTokens{"usb-1": false}
	clip := &fakeClipboard{}
	e, _ := newTestEngine(t, WithTokens(tokens), WithClipboard(clip))

	require.NoError(t, e.Add(ctx, storage.Record{Title: "Gated", Secret: "s", RequiresToken: true, TokenID: "usb-1"}))
	e.Views("")

	_, err := e.Secret(1)
	assert.ErrorIs(t, err, ErrTokenAbsent)
	assert.ErrorIs(t, e.CopySecret(1), ErrTokenAbsent)
	assert.Empty(t, clip.Text())
	assert.Empty(t, e.Tokens())

	tokens["usb-1"] = true
	secret, err := e.Secret(1)
	require.NoError(t, err)
	assert.Equal(t, "s", secret)
	assert.Equal(t, []Token{{Name: "key usb-1", ID: "usb-1"}}, e.Tokens())

	noProvider, _ := newTestEngine(t)
	require.NoError(t, noProvider.Add(ctx, storage.Record{Title: "Gated", RequiresToken: true, TokenID: "usb-1"}))
	noProvider.Views("")
	_, err = noProvider.Secret(1)
	assert.ErrorIs(t, err, ErrTokenAbsent)
}

func TestEngine_GatedRecordWithoutToken(t *testing.T) {
	ctx := context.Background()
	tokens := fakeTokens{"yubi": false}
	e, _ := newTestEngine(t, WithTokens(tokens))

	require.NoError(t, e.Add(ctx, storage.Record{Title: "Bank", Secret: "s3cret", RequiresToken: true, TokenID: "yubi"}))
	e.Views("")

	rec, err := e.Get(1)
	require.NoError(t, err)
	assert.Empty(t, rec.Secret)
	assert.Equal(t, "Bank", rec.Title)

	ungated := rec
	ungated.RequiresToken = false
	ungated.TokenID = ""
	assert.ErrorIs(t, e.Update(ctx, 1, ungated), ErrTokenAbsent)

	retokened := rec
	retokened.TokenID = "other"
	assert.ErrorIs(t, e.Update(ctx, 1, retokened), ErrTokenAbsent)

	replaced := rec
	replaced.Secret = "new"
	assert.ErrorIs(t, e.Update(ctx, 1, replaced), ErrTokenAbsent)

	_, err = e.Secret(1)
	assert.ErrorIs(t, err, ErrTokenAbsent)

	// renaming keeps the stored secret
	renamed := rec
	renamed.Title = "Bank2"
	require.NoError(t, e.Update(ctx, 1, renamed))

	tokens["yubi"] = true
	rec, err = e.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Bank2", rec.Title)
	assert.Equal(t, "s3cret", rec.Secret)

	rec.RequiresToken = false
	rec.TokenID = ""
	require.NoError(t, e.Update(ctx, 1, rec))
	tokens["yubi"] = false
	secret, err := e.Secret(1)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
}

func TestEngine_CopySecretClearsAfterExposure(t *testing.T) {
	ctx := context.Background()
	clip := &fakeClipboard{}
	e, _ := newTestEngine(t, WithClipboard(clip), WithExposure(3, 10*time.Millisecond))

	require.NoError(t, e.Add(ctx, storage.Record{Title: "Bank", Login: "alice", Secret: "s3cret"}))
	e.Views("")

	require.NoError(t, e.CopySecret(1))
	assert.Equal(t, "s3cret", clip.Text())
	assert.True(t, e.Exposure().Active())

	assert.Eventually(t, func() bool { return clip.Clears() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, clip.Text())
	assert.False(t, e.Exposure().Active())
}

func TestEngine_CopyLoginDoesNotStartExposure(t *testing.T) {
	ctx := context.Background()
	clip := &fakeClipboard{}
	e, _ := newTestEngine(t, WithClipboard(clip), WithExposure(3, 10*time.Millisecond))

	require.NoError(t, e.Add(ctx, storage.Record{Title: "Bank", Login: "alice", Secret: "s3cret"}))
	e.Views("")

	require.NoError(t, e.CopyLogin(1))
	assert.Equal(t, "alice", clip.Text())
	assert.False(t, e.Exposure().Active())
}

func TestEngine_CloseClearsExposedSecret(t *testing.T) {
	ctx := context.Background()
	clip := &fakeClipboard{}
	e, _ := newTestEngine(t, WithClipboard(clip), WithExposure(100, time.Hour))

	require.NoError(t, e.Add(ctx, storage.Record{Title: "Bank", Secret: "s3cret"}))
	e.Views("")
	require.NoError(t, e.CopySecret(1))

	e.Close()
	assert.Empty(t, clip.Text())
	assert.Equal(t, 1, clip.Clears())
	assert.False(t, e.Exposure().Active())
}

func TestEngine_CopyErrors(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.Add(ctx, rec("A", false)))
	e.Views("")

	assert.ErrorIs(t, e.CopySecret(1), ErrNoClipboard)
	assert.ErrorIs(t, e.CopySecret(7), ErrIndexOutOfRange)

	boom := errors.New("no display")
	broken, _ := newTestEngine(t, WithClipboard(&fakeClipboard{err: boom}))
	require.NoError(t, broken.Add(ctx, rec("A", false)))
	broken.Views("")
	assert.ErrorIs(t, broken.CopySecret(1), boom)
	assert.False(t, broken.Exposure().Active())
}

func TestEngine_Import(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "vault.hush")
	require.NoError(t, e.SaveAs(ctx, path, []byte("pw")))

	n, err := e.Import(ctx, []storage.Record{rec("A", false), {Login: "untitled"}, rec("B", true)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	other, _ := newTestEngine(t)
	require.NoError(t, other.Open(ctx, path, []byte("pw")))
	assert.Equal(t, []string{"B", "A"}, titles(other.Views("")))

	n, err = e.Import(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
