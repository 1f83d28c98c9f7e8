package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rmForce  bool
	rmFilter string
)

var rmCmd = &cobra.Command{
	Use:   "rm <n>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolVar(&rmForce, "force", false, "delete without confirmation")
	addFilterFlag(rmCmd, &rmFilter)
}

func runRm(cmd *cobra.Command, args []string) error {
	idx, err := selectRecord(cmd, args[0], rmFilter)
	if err != nil {
		return err
	}

	rec, err := app.Engine.Get(idx)
	if err != nil {
		return err
	}
	if !rmForce && !newConfirmer().Confirm(fmt.Sprintf("Delete %q?", rec.Title)) {
		fmt.Println("Cancelled")
		return nil
	}

	if _, err := app.Engine.Remove(cmd.Context(), idx); err != nil {
		return err
	}
	fmt.Printf("Deleted %q\n", rec.Title)
	return nil
}
