package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/render"
)

func newChartCommand(opts *options) *cobra.Command {
	var (
		output string
		kind   string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Render the selected chart",
		Long: `Load a file, apply the selection and render its chart. A .png output
is a static image; a .json output is the interactive figure. Interactive
scatters written to .png are drawn as a static scatter.

Examples:
  tabview chart -o sales.png sales.csv
  tabview chart --kind interactive_scatter -o sales.json sales.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, sel, err := opts.prepare(args[0])
			if err != nil {
				return err
			}
			if kind != "" {
				if sel.Chart, err = core.ParseChartKind(kind); err != nil {
					return err
				}
			}
			view, err := core.Apply(ds, sel)
			if err != nil {
				return err
			}
			rc, err := core.Project(view, sel.Chart, sel.X, sel.Y, sel.Color)
			if err != nil {
				return err
			}
			if err := checkChartOutput(output, rc.Kind); err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create chart: %w", err)
			}
			if err := writeChart(f, output, rc, render.Options{Width: width, Height: height}); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}

			opts.logger.Info("chart rendered", "file", output, "kind", string(rc.Kind), "points", rc.Points())
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s chart to %s\n", rc.Kind.Label(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "chart.png", "output file (.png or .json)")
	cmd.Flags().StringVar(&kind, "kind", "", "chart kind, overriding the selection")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "image height in pixels")

	return cmd
}

// checkChartOutput rejects output formats that cannot carry kind.
func checkChartOutput(output string, kind core.ChartKind) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".png":
		return nil
	case ".json":
		if kind == core.ChartHeatmap {
			return fmt.Errorf("%s has no interactive figure; write a .png instead", kind.Label())
		}
		return nil
	}
	return fmt.Errorf("unsupported chart output %q (expected .png or .json)", filepath.Ext(output))
}

// writeChart encodes rc in the format named by the output extension.
func writeChart(w io.Writer, output string, rc *core.RenderCommand, opts render.Options) error {
	if strings.EqualFold(filepath.Ext(output), ".json") {
		return render.WriteFigure(w, rc)
	}
	return render.RenderPNG(w, rc, opts)
}
