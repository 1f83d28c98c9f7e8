package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/passgen"
	"github.com/spf13/cobra"
)

var (
	showReveal bool
	showFilter string
)

var showCmd = &cobra.Command{
	Use:   "show <n>",
	Short: "Show a record",
	Long:  `Show record n. The secret is printed only with --reveal; prefer 'hush copy'.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showReveal, "reveal", false, "print the secret")
	addFilterFlag(showCmd, &showFilter)
}

func runShow(cmd *cobra.Command, args []string) error {
	idx, err := selectRecord(cmd, args[0], showFilter)
	if err != nil {
		return err
	}

	rec, err := app.Engine.Get(idx)
	if err != nil {
		return err
	}

	fmt.Printf("Title:    %s\n", rec.Title)
	fmt.Printf("Login:    %s\n", rec.Login)
	fmt.Printf("Favorite: %t\n", rec.IsFavorite)
	if rec.RequiresToken {
		fmt.Printf("Token:    %s\n", rec.TokenID)
	}

	if !showReveal {
		return nil
	}
	secret, err := app.Engine.Secret(idx)
	if err != nil {
		return err
	}
	fmt.Printf("Secret:   %s\n", secret)
	fmt.Printf("Strength: %s\n", passgen.Label(passgen.Strength(secret)))
	return nil
}
