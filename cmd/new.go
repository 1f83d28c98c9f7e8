package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/crypto"
	"github.com/illarion/hush/internal/git"
	"github.com/illarion/hush/internal/security"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create an empty vault",
	Long: `Create an empty vault at path (default: --vault, else default_vault from
the settings). The new vault becomes the remembered one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	path := flagVault
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = app.Settings.DefaultVault
	}
	if path == "" {
		return core.ErrPathRequired
	}
	path, err := security.NormalizeVaultPath(path)
	if err != nil {
		return err
	}

	if exists(path) && !newConfirmer().Confirm(fmt.Sprintf("%s exists. Replace it with an empty vault?", path)) {
		fmt.Println("Cancelled")
		return nil
	}

	password, err := GetNewPassword()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	app.Engine.NewVault()
	if err := app.Engine.SaveAs(cmd.Context(), path, password); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", path)
	fmt.Print(git.CheckVault(path).Format(path))
	return nil
}
