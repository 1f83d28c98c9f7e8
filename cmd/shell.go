package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/settings"
	"golang.org/x/term"
)

// The terminal side of the engine's capabilities.

// SystemClipboard writes to the desktop clipboard. Clearing also signals
// Cleared so a waiting command knows the secret is gone.
type SystemClipboard struct {
	mu      sync.Mutex
	write   func(string) error
	cleared chan struct{}
}

func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{
		write:   clipboard.WriteAll,
		cleared: make(chan struct{}, 1),
	}
}

func (c *SystemClipboard) CopyText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if clipboard.Unsupported {
		return core.ErrNoClipboard
	}
	if err := c.write(text); err != nil {
		return err
	}
	if text == "" {
		select {
		case c.cleared <- struct{}{}:
		default:
		}
	}
	return nil
}

// Cleared fires after the clipboard has been emptied
func (c *SystemClipboard) Cleared() <-chan struct{} {
	return c.cleared
}

// PathTokens treats a declared token as present while its path exists
type PathTokens struct {
	tokens []settings.Token
}

func NewPathTokens(tokens []settings.Token) *PathTokens {
	return &PathTokens{tokens: tokens}
}

func (p *PathTokens) IsTokenPresent(id string) bool {
	for _, t := range p.tokens {
		if t.ID == id {
			return exists(t.Path)
		}
	}
	return false
}

func (p *PathTokens) ListAvailableTokens() []core.Token {
	var out []core.Token
	for _, t := range p.tokens {
		if exists(t.Path) {
			out = append(out, core.Token{Name: t.Name, ID: t.ID})
		}
	}
	return out
}

// Declared returns every configured token, present or not
func (p *PathTokens) Declared() []settings.Token {
	return p.tokens
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// termPrompter asks for a password on the terminal, or takes HUSH_PASSWORD
type termPrompter struct{}

func (termPrompter) PromptPassword(title string) ([]byte, bool) {
	password, err := GetPassword(title + ": ")
	if err != nil || len(password) == 0 {
		return nil, false
	}
	return password, true
}

// termConfirmer asks a y/N question on stdin
type termConfirmer struct {
	in  io.Reader
	out io.Writer
}

func newConfirmer() termConfirmer {
	return termConfirmer{in: os.Stdin, out: os.Stderr}
}

func (c termConfirmer) Confirm(message string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", message)
	choice, err := c.readChoice()
	if err != nil {
		return false
	}
	return choice == "y" || choice == "yes"
}

// readChoice reads a single key in raw mode when stdin is a terminal,
// otherwise a whole line
func (c termConfirmer) readChoice() (string, error) {
	f, ok := c.in.(*os.File)
	if ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err == nil {
			defer func() { _ = term.Restore(int(f.Fd()), oldState) }()

			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				return "", err
			}
			choice := strings.ToLower(string(buf[0]))
			fmt.Fprintf(c.out, "%s\r\n", choice)
			return choice, nil
		}
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// vaultChooser picks the vault named by --vault, falling back to the
// configured default when that file exists
type vaultChooser struct {
	flag     string
	fallback string
}

func (c vaultChooser) ChooseFile() (string, bool) {
	if c.flag != "" {
		return c.flag, true
	}
	if c.fallback != "" && exists(c.fallback) {
		return c.fallback, true
	}
	return "", false
}

var (
	_ core.Clipboard        = (*SystemClipboard)(nil)
	_ core.TokenProvider    = (*PathTokens)(nil)
	_ core.PasswordPrompter = termPrompter{}
	_ core.Confirmer        = termConfirmer{}
	_ core.FileChooser      = vaultChooser{}
)
