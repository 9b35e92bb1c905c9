package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabview/internal/core"
)

const (
	headerColor  = "39"
	borderColor  = "240"
	missingColor = "241"
	numericColor = "114"
)

// styles are the lipgloss styles of the preview output, bound to one writer.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	numeric lipgloss.Style
	missing lipgloss.Style
	border  lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	cell := r.NewStyle().Padding(0, 1)
	return styles{
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color(missingColor)),
		header:  cell.Bold(true).Foreground(lipgloss.Color(headerColor)),
		cell:    cell,
		numeric: cell.Foreground(lipgloss.Color(numericColor)).Align(lipgloss.Right),
		missing: cell.Foreground(lipgloss.Color(missingColor)),
		border:  r.NewStyle().Foreground(lipgloss.Color(borderColor)),
	}
}

func newPreviewCommand(opts *options) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Print the column summary and the filtered rows",
		Long: `Load a file, apply the selection and print a summary of every column
followed by the first rows of the result. Use --full to print every row.

Examples:
  tabview preview sales.csv
  tabview preview --full -s selection.yaml sales.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, sel, err := opts.prepare(args[0])
			if err != nil {
				return err
			}
			if full {
				sel.ShowFull = true
			}
			view, err := core.Apply(ds, sel)
			if err != nil {
				return err
			}
			return writePreview(cmd.OutOrStdout(), args[0], ds, view, sel, newStyles(cmd.OutOrStdout(), opts.noColor))
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print every row instead of the first five")

	return cmd
}

// writePreview prints the column summary of ds and the rows of view.
func writePreview(w io.Writer, name string, ds, view *core.Dataset, sel core.Selection, st styles) error {
	fmt.Fprintln(w, st.title.Render(name))
	fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("%d rows, %d columns, %d rows after filters",
		ds.NumRows(), ds.NumColumns(), view.NumRows())))
	fmt.Fprintln(w)

	summary := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers("column", "type", "missing").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return st.cell
		})
	for _, meta := range ds.Describe() {
		summary.Row(meta.Name, meta.Type.String(), strconv.Itoa(meta.Missing))
	}
	fmt.Fprintln(w, summary.Render())
	fmt.Fprintln(w)

	rows := view.Head(sel.PreviewLimit())
	types := make([]core.ColumnType, view.NumColumns())
	for i, meta := range view.Describe() {
		types[i] = meta.Type
	}

	data := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers(view.ColumnNames()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case row < len(rows) && col < len(rows[row]) && rows[row][col] == "":
				return st.missing
			case col < len(types) && types[col] == core.ColumnNumeric:
				return st.numeric
			}
			return st.cell
		})
	for _, row := range rows {
		data.Row(displayRow(row)...)
	}
	fmt.Fprintln(w, data.Render())

	if shown := len(rows); shown < view.NumRows() {
		fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("showing %d of %d rows (use --full for all)", shown, view.NumRows())))
	}
	return nil
}

// displayRow marks missing cells so they stay visible in the table.
func displayRow(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == "" {
			v = "NaN"
		}
		out[i] = v
	}
	return out
}
