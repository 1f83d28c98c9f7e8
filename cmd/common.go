package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/crypto"
	"github.com/illarion/hush/internal/importer"
	"github.com/illarion/hush/internal/security"
	"github.com/spf13/cobra"
)

const maxAttempts = 3

// GetPassword retrieves password from environment or prompts user.
// The caller is responsible for calling crypto.ClearBytes on the returned password.
func GetPassword(prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	return password, nil
}

// GetNewPassword retrieves a password for a new vault.
// Checks the environment first, then prompts with confirmation.
func GetNewPassword() ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return readNewPassword()
}

func readNewPassword() ([]byte, error) {
	password, err := core.ReadPasswordConfirm("New password: ")
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, core.ErrPassphraseRequired
	}
	return password, nil
}

// openVault opens the vault named by --vault, else the remembered one, else
// the configured default
func openVault(ctx context.Context) error {
	e := app.Engine

	if flagVault == "" {
		if _, remembered := e.LastPath(); remembered {
			return openLast(ctx)
		}
	}

	chooser := vaultChooser{flag: flagVault, fallback: app.Settings.DefaultVault}
	path, ok := chooser.ChooseFile()
	if !ok {
		return core.ErrNoVaultOpen
	}
	path, err := security.NormalizeVaultPath(path)
	if err != nil {
		return err
	}
	return openPath(ctx, path)
}

func openPath(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	for attempt := 1; ; attempt++ {
		password, ok := termPrompter{}.PromptPassword("Password for " + path)
		if !ok {
			return core.ErrPassphraseRequired
		}
		err := app.Engine.Open(ctx, path, password)
		crypto.ClearBytes(password)

		if !retryable(err, attempt) {
			return err
		}
		fmt.Fprintln(os.Stderr, "wrong password, try again")
	}
}

func openLast(ctx context.Context) error {
	e := app.Engine
	for attempt := 1; ; attempt++ {
		ok, err := e.TryOpenLast(ctx, termPrompter{})
		if err == nil {
			if !ok {
				return core.ErrNoVaultOpen
			}
			return nil
		}
		if retryable(err, attempt) {
			fmt.Fprintln(os.Stderr, "wrong password, try again")
			continue
		}

		if errors.Is(err, core.ErrWrongPasswordOrCorrupt) && core.GetPasswordFromEnv() == nil {
			if newConfirmer().Confirm("Forget the remembered vault?") {
				if ferr := e.Forget(); ferr != nil {
					app.Logger.Warn("failed to forget vault", "error", ferr)
				}
			}
		}
		return err
	}
}

// retryable reports whether a failed open should prompt again.
// A password from the environment would fail the same way every time.
func retryable(err error, attempt int) bool {
	return errors.Is(err, core.ErrWrongPasswordOrCorrupt) &&
		attempt < maxAttempts &&
		core.GetPasswordFromEnv() == nil
}

// parseIndex reads a 1-based display index argument
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", core.ErrIndexOutOfRange, arg)
	}
	return n, nil
}

// selectRecord opens the vault and resolves an index against the listing for filter
func selectRecord(cmd *cobra.Command, arg, filter string) (int, error) {
	idx, err := parseIndex(arg)
	if err != nil {
		return 0, err
	}
	if err := openVault(cmd.Context()); err != nil {
		return 0, err
	}
	app.Engine.Views(filter)
	return idx, nil
}

// addFilterFlag lets index-taking commands address the same listing as `list <filter>`
func addFilterFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "filter", "", "resolve the index against `list <filter>`")
}

// HandleError prints err for the user
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrNoVaultOpen):
		fmt.Fprintf(os.Stderr, "Error: no vault to open\n")
		fmt.Fprintf(os.Stderr, "Run 'hush new' to create one or pass --vault\n")
	case errors.Is(err, core.ErrWrongPasswordOrCorrupt):
		fmt.Fprintf(os.Stderr, "Error: incorrect password or corrupted file\n")
	case errors.Is(err, core.ErrNotAVault):
		fmt.Fprintf(os.Stderr, "Error: file is not a hush vault\n")
	case errors.Is(err, core.ErrCorrupt):
		fmt.Fprintf(os.Stderr, "Error: vault is corrupted: %s\n", err)
	case errors.Is(err, core.ErrVaultLocked):
		fmt.Fprintf(os.Stderr, "Error: vault is in use by another hush process\n")
	case errors.Is(err, core.ErrNotPersisted):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The change was not written; re-run the command once the problem is fixed\n")
	case errors.Is(err, core.ErrIndexOutOfRange):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'hush list' to see record numbers\n")
	case errors.Is(err, core.ErrTokenAbsent):
		fmt.Fprintf(os.Stderr, "Error: this record needs its hardware token plugged in\n")
		fmt.Fprintf(os.Stderr, "Use 'hush tokens' to see which tokens are visible\n")
	case errors.Is(err, core.ErrNoClipboard):
		fmt.Fprintf(os.Stderr, "Error: no clipboard available; use 'hush show --reveal'\n")
	case errors.Is(err, core.ErrPasswordMismatch):
		fmt.Fprintf(os.Stderr, "Error: passwords do not match\n")
	case errors.Is(err, importer.ErrKDBX):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Check the KeePass password\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func flagMarks(favorite, gated bool) string {
	marks := ""
	if favorite {
		marks += "*"
	}
	if gated {
		marks += "T"
	}
	return marks
}
