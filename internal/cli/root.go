package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	selectionFile string
	verbose       bool
	noColor       bool

	logger *slog.Logger
}

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &options{logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "tabview",
		Short: "Filter, sort, chart and export tabular files",
		Long: `tabview loads a CSV or XLSX file, applies a selection (categorical and
numeric filters, a sort and a chart choice) and prints, renders or exports
the result.

A selection is read from a YAML file with --selection. Without one the
defaults apply: no filters, sorted by the first column, and a line chart of
the second column against the first.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = logging.New(cmd.ErrOrStderr(), level, "text")
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.selectionFile, "selection", "s", "", "selection file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newPreviewCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newChartCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tabview %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadFile reads and parses a dataset from disk.
func loadFile(path string) (*core.Dataset, error) {
	// #nosec G304 - path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return core.Load(data, filepath.Base(path))
}

// prepare loads the dataset at path and the selection that applies to it.
func (o *options) prepare(path string) (*core.Dataset, core.Selection, error) {
	ds, err := loadFile(path)
	if err != nil {
		return nil, core.Selection{}, err
	}
	sel, err := loadSelection(o.selectionFile, ds)
	if err != nil {
		return nil, core.Selection{}, err
	}
	o.logger.Debug("dataset loaded",
		"file", path,
		"rows", ds.NumRows(),
		"columns", ds.NumColumns(),
		"chart", string(sel.Chart),
	)
	return ds, sel, nil
}
