package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/git"
	"github.com/illarion/hush/internal/security"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which vault and settings are in use",
	Long:  `Show the remembered vault and the active settings. No password is needed.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	path, ok := app.Engine.LastPath()
	if ok {
		fmt.Printf("Vault:             %s\n", path)
	} else {
		fmt.Println("Vault:             (none remembered)")
		fmt.Printf("Default vault:     %s\n", app.Settings.DefaultVault)
	}

	fmt.Printf("Settings:          %s\n", app.SettingsPath)
	fmt.Printf("Clipboard timeout: %ds\n", app.Settings.ClipboardTimeout)
	fmt.Printf("Log level:         %s\n", app.Settings.LogLevel)
	fmt.Printf("Tokens:            %d configured, %d present\n",
		len(app.Tokens.Declared()), len(app.Engine.Tokens()))

	if !ok {
		return nil
	}
	warnings, err := security.CheckPermissions(path)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("\nwarning: %s\n", w)
	}
	if s := git.CheckVault(path).Format(path); s != "" {
		fmt.Printf("\n%s", s)
	}
	return nil
}
