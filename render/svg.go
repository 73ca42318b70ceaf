// ABOUTME: Draws a pond snapshot as a standalone SVG document: water, the mother duck, and one circle per duck.
// ABOUTME: Duck fill follows its state, so a still frame shows which ducks are compared, highlighted, or sorted.
package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/2389-research/ducksort/pond"

	svg "github.com/ajstarks/svgo"
)

// Duck fill colors by state.
const (
	ColorIdle        = "#FFD54F" // yellow
	ColorComparing   = "#4FC3F7" // blue
	ColorHighlighted = "#FF8A65" // orange
	ColorSorted      = "#81C784" // green
	ColorMother      = "#A1887F" // brown
	ColorWater       = "#E3F2FD"
)

// FillFor returns the fill color for a duck view. Highlight wins over
// comparing, which wins over sorted.
func FillFor(v pond.View) string {
	switch {
	case v.Highlighted:
		return ColorHighlighted
	case v.Comparing:
		return ColorComparing
	case v.Sorted:
		return ColorSorted
	default:
		return ColorIdle
	}
}

// SVG renders snap. It never fails; the error satisfies RenderFunc.
func SVG(_ context.Context, snap pond.Snapshot) ([]byte, error) {
	var b bytes.Buffer
	w, h := px(snap.Bounds.Width), px(snap.Bounds.Height)

	canvas := svg.New(&b)
	canvas.Startview(w, h, 0, 0, w, h)
	canvas.Rect(0, 0, w, h, "fill:"+ColorWater)

	if snap.Mother.Size > 0 {
		canvas.Gid("mother")
		drawDuck(canvas, snap.Mother, ColorMother)
		canvas.Gend()
	}
	for i, d := range snap.Ducks {
		canvas.Gid(fmt.Sprintf("duck-%d", i))
		drawDuck(canvas, d, FillFor(d))
		canvas.Text(px(d.X), px(d.Y), strconv.Itoa(d.Value),
			fmt.Sprintf("font-family:monospace;font-size:%dpx;text-anchor:middle", px(max(d.Size/2, 8))),
			`dominant-baseline="central"`)
		canvas.Gend()
	}

	canvas.End()
	return b.Bytes(), nil
}

func drawDuck(canvas *svg.SVG, v pond.View, fill string) {
	canvas.Circle(px(v.X), px(v.Y), px(v.Size/2), "fill:"+fill+";stroke:#5D4037;stroke-width:1")
}

// px rounds a pond coordinate to the integer grid svgo draws on.
func px(f float64) int { return int(math.Round(f)) }
