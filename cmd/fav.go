package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var favFilter string

var favCmd = &cobra.Command{
	Use:   "fav <n>",
	Short: "Toggle the favorite mark of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runFav,
}

func init() {
	rootCmd.AddCommand(favCmd)
	addFilterFlag(favCmd, &favFilter)
}

func runFav(cmd *cobra.Command, args []string) error {
	idx, err := selectRecord(cmd, args[0], favFilter)
	if err != nil {
		return err
	}

	rec, err := app.Engine.Get(idx)
	if err != nil {
		return err
	}
	fav, err := app.Engine.ToggleFavorite(cmd.Context(), idx)
	if err != nil {
		return err
	}

	if fav {
		fmt.Printf("%q is now a favorite\n", rec.Title)
	} else {
		fmt.Printf("%q is no longer a favorite\n", rec.Title)
	}
	return nil
}
