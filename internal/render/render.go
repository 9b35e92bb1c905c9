// Package render draws core.RenderCommand values.
//
// Static kinds are drawn to PNG with go-chart. The interactive scatter is
// written as a JSON figure that a browser plotting library draws client-side.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/tabview/internal/core"
)

// Default image size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// Media types produced by Render.
const (
	MIMEPNG    = "image/png"
	MIMEFigure = "application/json"
)

// ErrNothingToDraw is returned when every point has a non-finite coordinate.
var ErrNothingToDraw = errors.New("no finite points to draw")

// Options controls the size of static images.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// MediaType returns the media type Render writes for kind.
func MediaType(kind core.ChartKind) string {
	if kind.Interactive() {
		return MIMEFigure
	}
	return MIMEPNG
}

// Render writes cmd to w in the format MediaType(cmd.Kind) names.
func Render(w io.Writer, cmd *core.RenderCommand, opts Options) error {
	opts = opts.withDefaults()
	switch cmd.Kind {
	case core.ChartLine, core.ChartScatter:
		return renderXY(w, cmd, opts)
	case core.ChartBar:
		return renderBar(w, cmd, opts)
	case core.ChartHeatmap:
		return renderHeatmap(w, cmd, opts)
	case core.ChartInteractiveScatter:
		return WriteFigure(w, cmd)
	}
	return fmt.Errorf("render: %w %q", core.ErrUnknownChartKind, cmd.Kind)
}

// RenderPNG always draws a static image. An interactive scatter is drawn as
// a scatter with one colored series per group.
func RenderPNG(w io.Writer, cmd *core.RenderCommand, opts Options) error {
	if cmd.Kind == core.ChartInteractiveScatter {
		return renderXY(w, cmd, opts.withDefaults())
	}
	return Render(w, cmd, opts)
}

// Bytes renders cmd into memory and returns the body with its media type.
func Bytes(cmd *core.RenderCommand, opts Options) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, cmd, opts); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), MediaType(cmd.Kind), nil
}
