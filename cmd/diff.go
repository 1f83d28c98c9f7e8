package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/crypto"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <other.hush>",
	Short: "Compare the vault with another vault file",
	Long: `Compare the records of the open vault with another vault, for example a
backup. Titles, logins and flags are compared; secrets are never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	if err := openVault(cmd.Context()); err != nil {
		return err
	}

	// a second engine so the other file is never remembered or autosaved
	other := core.New(core.WithLogger(app.Logger))
	defer other.Close()

	password, err := GetPassword("Password for " + args[0] + ": ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := other.Open(cmd.Context(), args[0], password); err != nil {
		return err
	}

	lines := core.DiffRecords(app.Engine.Records(), other.Records())
	if !core.HasChanges(lines) {
		fmt.Println("No differences")
		return nil
	}

	current, _ := app.Engine.CurrentPath()
	fmt.Printf("--- %s\n+++ %s\n", current, args[0])
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}
