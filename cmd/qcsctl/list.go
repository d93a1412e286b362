package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the class list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			entries, err := c.gateway().LoadInitial(ctx)
			if err != nil {
				return describe(err)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
}

// printEntries writes entries as a table numbered from 1, the numbering
// rm expects.
func printEntries(w io.Writer, entries []models.ClassEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No classes defined.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCLASS\tDESCRIPTION")
	for i, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strconv.Itoa(i+1), e.Class, e.Description)
	}
	return tw.Flush()
}
