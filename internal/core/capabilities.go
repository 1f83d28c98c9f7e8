package core

// The engine never talks to a screen, a clipboard or a USB bus directly.
// The shell supplies these capabilities when it constructs the Engine.

// FileChooser picks a vault file. ok is false when the user cancelled.
type FileChooser interface {
	ChooseFile() (path string, ok bool)
}

// PasswordPrompter asks the user for a passphrase. ok is false when the user cancelled.
type PasswordPrompter interface {
	PromptPassword(title string) (passphrase []byte, ok bool)
}

// Confirmer asks a yes/no question
type Confirmer interface {
	Confirm(message string) bool
}

// Clipboard receives copied text. CopyText("") clears it.
// It is called from the exposure timer goroutine, so implementations
// must be safe for concurrent use.
type Clipboard interface {
	CopyText(text string) error
}

// Token is a hardware token the shell can see
type Token struct {
	Name string
	ID   string
}

// TokenProvider answers whether a hardware token is plugged in
type TokenProvider interface {
	IsTokenPresent(id string) bool
	ListAvailableTokens() []Token
}

// PasswordPrompterFunc adapts a plain function to PasswordPrompter
type PasswordPrompterFunc func(title string) ([]byte, bool)

func (f PasswordPrompterFunc) PromptPassword(title string) ([]byte, bool) {
	return f(title)
}

// ClipboardFunc adapts a plain function to Clipboard
type ClipboardFunc func(text string) error

func (f ClipboardFunc) CopyText(text string) error {
	return f(text)
}
