package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/tabview/internal/core"
)

// Diverging scale endpoints, blue for -1 through light gray to red for +1.
var (
	colorNegative  = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	colorNeutral   = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	colorPositive  = drawing.Color{R: 180, G: 4, B: 38, A: 255}
	colorUndefined = chart.ColorLightGray
)

// Heatmap layout in pixels.
const (
	heatmapTitleHeight  = 40
	heatmapBottomMargin = 36
	heatmapLabelWidth   = 140
	heatmapBarWidth     = 18
	heatmapBarGap       = 16
	heatmapBarLabels    = 36
	heatmapBarSteps     = 64
)

// scaleColor maps a coefficient in [-1, 1] to the diverging scale.
func scaleColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return colorUndefined
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerp(colorNeutral, colorNegative, -v)
	}
	return lerp(colorNeutral, colorPositive, v)
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// annotation formats a coefficient with two significant digits.
func annotation(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 2, 64)
}

// renderHeatmap draws the correlation matrix as an annotated grid with a
// color bar, using go-chart's raster renderer directly.
func renderHeatmap(w io.Writer, cmd *core.RenderCommand, opts Options) error {
	m := cmd.Heatmap
	if m == nil || len(m.Columns) == 0 {
		return ErrNothingToDraw
	}

	r, err := chart.PNG(opts.Width, opts.Height)
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}

	n := len(m.Columns)
	gridLeft := heatmapLabelWidth
	gridTop := heatmapTitleHeight
	gridW := opts.Width - gridLeft - heatmapBarGap - heatmapBarWidth - heatmapBarLabels
	gridH := opts.Height - gridTop - heatmapBottomMargin
	if gridW < n || gridH < n {
		return fmt.Errorf("render heatmap: %dx%d image too small for %d columns", opts.Width, opts.Height, n)
	}
	cellW, cellH := gridW/n, gridH/n

	chart.Draw.Box(r, chart.Box{Right: opts.Width, Bottom: opts.Height}, chart.Style{
		FillColor:   chart.ColorWhite,
		StrokeColor: chart.ColorWhite,
	})

	title := textStyle(font, 14, chart.TextHorizontalAlignCenter)
	chart.Draw.TextWithin(r, cmd.Title, chart.Box{Left: 0, Top: 8, Right: opts.Width, Bottom: gridTop}, title)

	cellFont := math.Max(7, math.Min(12, float64(cellH)/3))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			cell := chart.Box{
				Left:   gridLeft + j*cellW,
				Top:    gridTop + i*cellH,
				Right:  gridLeft + (j+1)*cellW,
				Bottom: gridTop + (i+1)*cellH,
			}
			chart.Draw.Box(r, cell, chart.Style{
				FillColor:   scaleColor(v),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 1,
			})
			if label := annotation(v); label != "" {
				st := textStyle(font, cellFont, chart.TextHorizontalAlignCenter)
				if math.Abs(v) > 0.6 {
					st.FontColor = chart.ColorWhite
				}
				chart.Draw.TextWithin(r, label, cell, st)
			}
		}
	}

	rowLabel := textStyle(font, 10, chart.TextHorizontalAlignRight)
	colLabel := textStyle(font, 10, chart.TextHorizontalAlignCenter)
	for i, name := range m.Columns {
		chart.Draw.TextWithin(r, truncate(name, 20), chart.Box{
			Left:   4,
			Top:    gridTop + i*cellH,
			Right:  gridLeft - 6,
			Bottom: gridTop + (i+1)*cellH,
		}, rowLabel)
		chart.Draw.TextWithin(r, truncate(name, maxLabelRunes(cellW)), chart.Box{
			Left:   gridLeft + i*cellW,
			Top:    gridTop + n*cellH + 4,
			Right:  gridLeft + (i+1)*cellW,
			Bottom: gridTop + n*cellH + heatmapBottomMargin,
		}, colLabel)
	}

	drawColorBar(r, font, gridLeft+n*cellW+heatmapBarGap, gridTop, n*cellH)

	if err := r.Save(w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// drawColorBar draws the scale from +1 at the top to -1 at the bottom.
func drawColorBar(r chart.Renderer, font *truetype.Font, left, top, height int) {
	step := float64(height) / heatmapBarSteps
	for k := 0; k < heatmapBarSteps; k++ {
		v := 1 - 2*(float64(k)+0.5)/heatmapBarSteps
		c := scaleColor(v)
		chart.Draw.Box(r, chart.Box{
			Left:   left,
			Top:    top + int(float64(k)*step),
			Right:  left + heatmapBarWidth,
			Bottom: top + int(float64(k+1)*step) + 1,
		}, chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1})
	}

	st := textStyle(font, 9, chart.TextHorizontalAlignLeft)
	x := left + heatmapBarWidth + 4
	for _, mark := range []struct {
		label string
		y     int
	}{{"1", top}, {"0", top + height/2}, {"-1", top + height}} {
		chart.Draw.TextWithin(r, mark.label, chart.Box{Left: x, Top: mark.y - 8, Right: x + heatmapBarLabels, Bottom: mark.y + 8}, st)
	}
}

func textStyle(font *truetype.Font, size float64, align chart.TextHorizontalAlign) chart.Style {
	return chart.Style{
		Font:                font,
		FontSize:            size,
		FontColor:           chart.ColorBlack,
		TextHorizontalAlign: align,
		TextVerticalAlign:   chart.TextVerticalAlignMiddle,
	}
}

// maxLabelRunes estimates how many characters fit under a column.
func maxLabelRunes(cellW int) int {
	n := cellW / 7
	if n < 3 {
		return 3
	}
	return n
}
