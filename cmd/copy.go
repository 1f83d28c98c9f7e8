package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/hush/internal/timer"
	"github.com/spf13/cobra"
)

var errClearFailed = errors.New("clipboard could not be cleared, clear it manually")

var (
	copyLogin  bool
	copyFilter string
)

var copyCmd = &cobra.Command{
	Use:   "copy <n>",
	Short: "Copy a secret to the clipboard",
	Long: `Copy the secret of record n to the clipboard and wait until it is cleared.
The clipboard is cleared after clipboard_timeout seconds, or right away on
Ctrl-C. Copying a login does not wait.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().BoolVar(&copyLogin, "login", false, "copy the login instead of the secret")
	addFilterFlag(copyCmd, &copyFilter)
}

func runCopy(cmd *cobra.Command, args []string) error {
	idx, err := selectRecord(cmd, args[0], copyFilter)
	if err != nil {
		return err
	}

	if copyLogin {
		if err := app.Engine.CopyLogin(idx); err != nil {
			return err
		}
		fmt.Println("Login copied to clipboard")
		return nil
	}

	if err := app.Engine.CopySecret(idx); err != nil {
		return err
	}
	return waitForClear(cmd)
}

// waitForClear shows the countdown until the clipboard is emptied.
// An interrupt clears it right away.
func waitForClear(cmd *cobra.Command) error {
	ctx := cmd.Context()
	exposure := app.Engine.Exposure()

	fmt.Fprintf(os.Stderr, "Secret copied, clearing in %ds", exposure.Remaining())
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr)
			return clearNow()
		case left := <-exposure.Ticks():
			fmt.Fprintf(os.Stderr, "\rSecret copied, clearing in %ds ", left)
			if left == 0 {
				// the clear may have failed; give it one more interval to report
				select {
				case <-app.Clipboard.Cleared():
				case <-time.After(timer.DefaultInterval):
					fmt.Fprintln(os.Stderr)
					return errClearFailed
				}
				fmt.Fprintln(os.Stderr, "\nClipboard cleared")
				return nil
			}
		case <-app.Clipboard.Cleared():
			fmt.Fprintln(os.Stderr, "\nClipboard cleared")
			return nil
		}
	}
}

// clearNow ends the exposure window early and reports whether the clear took
func clearNow() error {
	app.Engine.Close()
	select {
	case <-app.Clipboard.Cleared():
		fmt.Fprintln(os.Stderr, "Clipboard cleared")
		return nil
	default:
		return errClearFailed
	}
}
