package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/passgen"
	"github.com/spf13/cobra"
)

var (
	genLength    int
	genCount     int
	genNoUpper   bool
	genNoLower   bool
	genNoDigits  bool
	genNoSymbols bool
	genExclude   string
)

const maxGenerateCount = 100

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate random passwords",
	Long: `Generate random passwords from crypto/rand. No vault is needed.

Examples:
  hush generate
  hush generate -l 32 --no-symbols
  hush generate --exclude "0O1lI" -n 5`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genLength, "length", "l", passgen.DefaultLength,
		fmt.Sprintf("password length (%d-%d)", passgen.MinLength, passgen.MaxLength))
	generateCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of passwords")
	generateCmd.Flags().BoolVar(&genNoUpper, "no-uppercase", false, "exclude uppercase letters")
	generateCmd.Flags().BoolVar(&genNoLower, "no-lowercase", false, "exclude lowercase letters")
	generateCmd.Flags().BoolVar(&genNoDigits, "no-numbers", false, "exclude digits")
	generateCmd.Flags().BoolVar(&genNoSymbols, "no-symbols", false, "exclude symbols")
	generateCmd.Flags().StringVar(&genExclude, "exclude", "", "characters to leave out")
}

func runGenerate(_ *cobra.Command, _ []string) error {
	if genCount < 1 || genCount > maxGenerateCount {
		return fmt.Errorf("count must be between 1 and %d", maxGenerateCount)
	}

	opts := passgen.Options{
		Length:  genLength,
		Lower:   !genNoLower,
		Upper:   !genNoUpper,
		Digits:  !genNoDigits,
		Symbols: !genNoSymbols,
		Exclude: genExclude,
	}
	for range genCount {
		pw, err := passgen.Generate(opts)
		if err != nil {
			return err
		}
		fmt.Printf("%s  (%s)\n", pw, passgen.Label(passgen.Strength(pw)))
	}
	return nil
}
