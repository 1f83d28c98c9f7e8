package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish>",
	Short: "Output shell completion script",
	Long: `Output a shell completion script.

  bash: source <(hush completion bash)
  zsh:  hush completion zsh > "${fpath[1]}/_hush"
  fish: hush completion fish > ~/.config/fish/completions/hush.fish`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish"},
	// completion needs neither settings nor a vault
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runCompletion,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(_ *cobra.Command, args []string) error {
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(os.Stdout, true)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	default:
		return fmt.Errorf("unknown shell: %s (supported: bash, zsh, fish)", args[0])
	}
}
