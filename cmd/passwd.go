package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/crypto"
	"github.com/illarion/hush/internal/git"
	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the vault password",
	Args:  cobra.NoArgs,
	RunE:  runPasswd,
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, _ []string) error {
	if err := openVault(cmd.Context()); err != nil {
		return err
	}

	// HUSH_PASSWORD only unlocks; the new password is always typed
	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := app.Engine.ChangePassphrase(cmd.Context(), password); err != nil {
		return err
	}

	path, _ := app.Engine.CurrentPath()
	fmt.Printf("Password changed for %s\n", path)
	if git.CheckVault(path).Tracked {
		fmt.Println("warning: the vault is tracked by git; committed copies still open with the old password")
	}
	return nil
}
