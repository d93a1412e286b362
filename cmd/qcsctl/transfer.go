package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// classFile is the TOML document written by export and read by apply.
type classFile struct {
	Classes []models.ClassEntry `toml:"class"`
}

func newImportCmd(c *cli) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk import classes from delimited text (use - for stdin)",
		Long: "import sends one class per line to the server, optionally followed by a\n" +
			"description separated by a tab, comma, semicolon or pipe.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			status, err := st.Import(ctx, nil, string(raw), classstore.ParseImportMode(mode))
			if err != nil {
				return describe(err)
			}
			if !status.OK() {
				return fmt.Errorf("%s", status.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(classstore.ImportAppend), "append or replace")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the class list as TOML (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			entries, err := c.gateway().LoadInitial(ctx)
			if err != nil {
				return describe(err)
			}
			data, err := toml.Marshal(classFile{Classes: entries})
			if err != nil {
				return fmt.Errorf("encode toml: %w", err)
			}

			if len(args) == 0 || args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d classes to %s.\n", len(entries), args[0])
			return nil
		},
	}
}

func newApplyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file>",
		Short: "Replace the class list with the contents of a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var f classFile
			if err := toml.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			ctx, cancel := c.context(cmd.Context())
			defer cancel()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			st.Load(f.Classes)
			status, err := st.Save(ctx, nil)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d classes.\n", status.Message, st.Len())
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
