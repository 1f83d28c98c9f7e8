package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atotto/clipboard"
	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/settings"
	"github.com/illarion/hush/internal/storage"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathTokens(t *testing.T) {
	dir := t.TempDir()
	plugged := filepath.Join(dir, "plugged")
	require.NoError(t, os.WriteFile(plugged, nil, 0600))

	p := NewPathTokens([]settings.Token{
		{Name: "Work key", ID: "work", Path: plugged},
		{Name: "Home key", ID: "home", Path: filepath.Join(dir, "unplugged")},
	})

	assert.True(t, p.IsTokenPresent("work"))
	assert.False(t, p.IsTokenPresent("home"))
	assert.False(t, p.IsTokenPresent("unknown"))
	assert.Equal(t, []core.Token{{Name: "Work key", ID: "work"}}, p.ListAvailableTokens())
	assert.Len(t, p.Declared(), 2)
}

func TestTermConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := termConfirmer{in: strings.NewReader(tt.input), out: &out}
		assert.Equal(t, tt.want, c.Confirm("Delete?"), "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N]: ", out.String())
	}
}

func TestVaultChooser(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "keepit.hush")

	path, ok := vaultChooser{flag: "/x/flag.hush", fallback: fallback}.ChooseFile()
	assert.True(t, ok)
	assert.Equal(t, "/x/flag.hush", path)

	_, ok = vaultChooser{fallback: fallback}.ChooseFile()
	assert.False(t, ok, "fallback does not exist yet")

	require.NoError(t, os.WriteFile(fallback, nil, 0600))
	path, ok = vaultChooser{fallback: fallback}.ChooseFile()
	assert.True(t, ok)
	assert.Equal(t, fallback, path)
}

func TestSystemClipboard_SignalsClear(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this platform")
	}

	var got []string
	c := NewSystemClipboard()
	c.write = func(s string) error {
		got = append(got, s)
		return nil
	}

	require.NoError(t, c.CopyText("secret"))
	select {
	case <-c.Cleared():
		t.Fatal("copy must not signal clear")
	default:
	}

	require.NoError(t, c.CopyText(""))
	select {
	case <-c.Cleared():
	default:
		t.Fatal("clear was not signalled")
	}
	assert.Equal(t, []string{"secret", ""}, got)

	boom := errors.New("no display")
	c.write = func(string) error { return boom }
	assert.ErrorIs(t, c.CopyText(""), boom)
}

func TestWaitForClear_Interrupted(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this platform")
	}
	boom := errors.New("no display")

	tests := []struct {
		name    string
		clear   error
		wantErr error
	}{
		{"cleared", nil, nil},
		{"clear fails", boom, errClearFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			c := NewSystemClipboard()
			c.write = func(s string) error {
				if s == "" && tt.clear != nil {
					return tt.clear
				}
				got = append(got, s)
				return nil
			}
			e := core.New(core.WithClipboard(c), core.WithExposure(100, time.Hour))

			prev := app
			app = &App{Engine: e, Clipboard: c}
			t.Cleanup(func() { app = prev })

			require.NoError(t, e.Add(context.Background(), storage.Record{Title: "Bank", Secret: "s3cret"}))
			e.Views("")
			require.NoError(t, e.CopySecret(1))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			cmd := &cobra.Command{}
			cmd.SetContext(ctx)

			err := waitForClear(cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []string{"s3cret"}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"s3cret", ""}, got)
			assert.False(t, e.Exposure().Active())
		})
	}
}
