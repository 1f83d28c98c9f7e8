package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forget the remembered vault",
	Long:  `Forget which vault was opened last. The vault file itself is left alone.`,
	Args:  cobra.NoArgs,
	RunE:  runForget,
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}

func runForget(_ *cobra.Command, _ []string) error {
	path, ok := app.Engine.LastPath()
	if err := app.Engine.Forget(); err != nil {
		return err
	}
	if ok {
		fmt.Printf("Forgot %s\n", path)
	} else {
		fmt.Println("No vault was remembered")
	}
	return nil
}
