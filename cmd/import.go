package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/crypto"
	"github.com/illarion/hush/internal/importer"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.kdbx>",
	Short: "Import records from a KeePass database",
	Long: `Append every titled entry of a KeePass (.kdbx) database to the vault.
Title, user name and password are imported; groups are flattened.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := openVault(cmd.Context()); err != nil {
		return err
	}

	password, err := core.ReadPassword("KeePass password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	records, err := importer.OpenKDBX(args[0], string(password))
	if err != nil {
		return err
	}

	n, err := app.Engine.Import(cmd.Context(), records)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d of %d entries\n", n, len(records))
	return nil
}
