package main

import (
	"fmt"
	"strconv"

	"github.com/dalemusser/quickclass/internal/app/system/textutil"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/spf13/cobra"
)

func newAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <class> [description]",
		Short: "Append a class to the list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := textutil.NormalizeClassName(args[0])
			if name == "" {
				return fmt.Errorf("class name %q is empty after normalization", args[0])
			}
			entry := models.ClassEntry{Class: name}
			if len(args) == 2 {
				entry.Description = args[1]
			}

			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			st.AddEntry(nil)
			page := st.CurrentPage()
			rows := st.Page(page)
			rows[len(rows)-1] = entry
			st.SyncPage(rows, page)

			status, err := st.Save(ctx, nil)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %q (%d classes).\n", status.Message, name, st.Len())
			return nil
		},
	}
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the class at a list position (as printed by list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("index must be a positive number, got %q", args[0])
			}

			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			entries := st.Entries()
			if n > len(entries) {
				return fmt.Errorf("index %d out of range: the list has %d classes", n, len(entries))
			}
			removed := entries[n-1].Class
			st.DeleteEntry(n - 1)

			status, err := st.Save(ctx, nil)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %q (%d classes).\n", status.Message, removed, st.Len())
			return nil
		},
	}
}
