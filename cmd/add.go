package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/passgen"
	"github.com/illarion/hush/internal/storage"
	"github.com/spf13/cobra"
)

var (
	addLogin     string
	addFavorite  bool
	addToken     string
	addGenerate  bool
	addGenLength int
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a record",
	Long: `Add a record to the vault. The secret is read from the terminal without
echo, from stdin when it is not a terminal, or generated with --generate.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addLogin, "login", "l", "", "login or username")
	addCmd.Flags().BoolVar(&addFavorite, "favorite", false, "mark as favorite")
	addCmd.Flags().StringVar(&addToken, "token", "", "require the hardware token with this id to reveal the secret")
	addCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "generate the secret")
	addCmd.Flags().IntVar(&addGenLength, "length", passgen.DefaultLength, "generated secret length")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := openVault(cmd.Context()); err != nil {
		return err
	}

	secret, err := newSecret(addGenerate, addGenLength)
	if err != nil {
		return err
	}

	rec := storage.Record{
		Title:         args[0],
		Login:         addLogin,
		Secret:        secret,
		IsFavorite:    addFavorite,
		RequiresToken: addToken != "",
		TokenID:       addToken,
	}
	if err := app.Engine.Add(cmd.Context(), rec); err != nil {
		return err
	}

	fmt.Printf("Added %q (strength: %s)\n", rec.Title, passgen.Label(passgen.Strength(secret)))
	return nil
}

// newSecret generates a secret or reads one from the user
func newSecret(generate bool, length int) (string, error) {
	if generate {
		opts := passgen.DefaultOptions()
		opts.Length = length
		return passgen.Generate(opts)
	}
	return readSecret()
}

func readSecret() (string, error) {
	if core.IsTerminal() {
		secret, err := core.ReadPassword("Secret: ")
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
