package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Show configured hardware tokens",
	Long: `List the hardware tokens declared in the settings file and whether each
is plugged in. A token counts as present while its path exists.`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(_ *cobra.Command, _ []string) error {
	declared := app.Tokens.Declared()
	if len(declared) == 0 {
		fmt.Printf("No tokens configured. Add them under 'tokens:' in %s\n", app.SettingsPath)
		return nil
	}

	present := make(map[string]bool)
	for _, t := range app.Engine.Tokens() {
		present[t.ID] = true
	}

	for _, t := range declared {
		state := "absent"
		if present[t.ID] {
			state = "present"
		}
		fmt.Printf("  %s (%s): %s\n", t.Name, t.ID, state)
	}
	return nil
}
