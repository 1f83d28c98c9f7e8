package cmd

import (
	"fmt"

	"github.com/illarion/hush/internal/passgen"
	"github.com/spf13/cobra"
)

var (
	editTitle     string
	editLogin     string
	editSecret    bool
	editGenerate  bool
	editGenLength int
	editToken     string
	editNoToken   bool
	editFilter    string
)

var editCmd = &cobra.Command{
	Use:   "edit <n>",
	Short: "Change a record",
	Long:  `Change the fields of record n. Fields without a flag keep their value.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVarP(&editLogin, "login", "l", "", "new login")
	editCmd.Flags().BoolVarP(&editSecret, "secret", "s", false, "enter a new secret")
	editCmd.Flags().BoolVarP(&editGenerate, "generate", "g", false, "generate a new secret")
	editCmd.Flags().IntVar(&editGenLength, "length", passgen.DefaultLength, "generated secret length")
	editCmd.Flags().StringVar(&editToken, "token", "", "require the hardware token with this id")
	editCmd.Flags().BoolVar(&editNoToken, "no-token", false, "stop requiring a hardware token")
	editCmd.MarkFlagsMutuallyExclusive("secret", "generate")
	editCmd.MarkFlagsMutuallyExclusive("token", "no-token")
	addFilterFlag(editCmd, &editFilter)
}

func runEdit(cmd *cobra.Command, args []string) error {
	idx, err := selectRecord(cmd, args[0], editFilter)
	if err != nil {
		return err
	}

	rec, err := app.Engine.Get(idx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		rec.Title = editTitle
	}
	if flags.Changed("login") {
		rec.Login = editLogin
	}
	if editSecret || editGenerate {
		secret, err := newSecret(editGenerate, editGenLength)
		if err != nil {
			return err
		}
		rec.Secret = secret
	}
	switch {
	case flags.Changed("token"):
		rec.RequiresToken = true
		rec.TokenID = editToken
	case editNoToken:
		rec.RequiresToken = false
		rec.TokenID = ""
	}

	if err := app.Engine.Update(cmd.Context(), idx, rec); err != nil {
		return err
	}
	fmt.Printf("Updated %q\n", rec.Title)
	return nil
}
