package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabview/internal/core"
)

func newExportCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the filtered and sorted rows as CSV",
		Long: `Load a file, apply the selection and write the resulting rows as CSV.
Use "-o -" to write to stdout.

Examples:
  tabview export sales.csv
  tabview export -s selection.yaml -o west.csv sales.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, sel, err := opts.prepare(args[0])
			if err != nil {
				return err
			}
			view, err := core.Apply(ds, sel)
			if err != nil {
				return err
			}
			if output == "-" {
				return core.WriteCSV(cmd.OutOrStdout(), view)
			}
			if err := writeExport(output, view); err != nil {
				return err
			}
			opts.logger.Info("exported", "file", output, "rows", view.NumRows())
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", view.NumRows(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", core.ExportFileName, "output CSV file")

	return cmd
}

// writeExport writes view to path through a temporary file so readers never
// see a partial export.
func writeExport(path string, view *core.Dataset) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tabview-*.csv")
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := core.WriteCSV(tmp, view); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
