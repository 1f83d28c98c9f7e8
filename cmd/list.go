package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [filter]",
	Aliases: []string{"ls"},
	Short:   "List records, favorites first",
	Long: `List records in display order: favorites first, then the rest, each group
in the order the records were added. A filter keeps records whose title
contains it (case-sensitive).

The numbers shown are what edit, rm, fav, show and copy take. When you list
with a filter, pass the same --filter to those commands.

Flags: * favorite, T needs a hardware token.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := openVault(cmd.Context()); err != nil {
		return err
	}

	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	n := 0
	for idx, v := range app.Engine.List(filter) {
		if n == 0 {
			fmt.Fprintln(w, "#\tTITLE\tLOGIN\t")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", idx, v.Title, v.Login, flagMarks(v.IsFavorite, v.RequiresToken))
		n++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if n == 0 {
		if filter != "" {
			fmt.Printf("No records match %q\n", filter)
		} else {
			fmt.Println("Vault is empty. Use 'hush add' to create a record")
		}
	}
	return nil
}
