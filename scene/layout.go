// Package scene derives viewport geometry (padding, aspect, pixel
// size, chrome vs fill mode) from the replay bounds. Everything here
// is computed once per run and never mutated per frame.
package scene

import (
	"math"

	"github.com/baderabdallah/robot-mapping-warehouses/replay"
)

// Padding rule shared by aspect and viewport computation: each axis is
// padded by 2% of its range, with a 0.5 world-unit floor.
const (
	padFraction = 0.02
	padMin      = 0.5
)

// Default viewport when the bounds are degenerate (zero frames or no
// finite coordinates).
const (
	defaultMin = 0.0
	defaultMax = 25.0
)

// Interactive canvas targets. Export sizing is unclamped, see
// ExportViewport.
const (
	minHeightPx = 600
	maxHeightPx = 1200
	minWidthPx  = 1400
	maxWidthPx  = 2800
)

// Viewport describes the world window and the pixel canvas it maps to.
type Viewport struct {
	// Padded world-coordinate limits.
	X0, X1 float64
	Y0, Y1 float64
	// Target canvas size.
	WidthPx  int
	HeightPx int
	DPI      float64
	// Fill uses the whole canvas edge-to-edge with no chrome; the
	// default mode reserves margins for a grid and legend.
	Fill bool
}

// Aspect returns the width/height ratio of the padded bounds, clamped
// to [0.25, 4.0]. Degenerate bounds yield 1.0.
func Aspect(b replay.Bounds) float64 {
	if b.Degenerate() {
		return 1.0
	}
	x0, x1, y0, y1 := padded(b)
	aspect := (x1 - x0) / math.Max(1e-9, y1-y0)
	return math.Max(0.25, math.Min(4.0, aspect))
}

// Layout computes the interactive viewport: padded limits (or the
// fixed default window when bounds are degenerate) and a pixel target
// with the height clamped to [600, 1200] and the width, height*aspect,
// clamped to [1400, 2800].
func Layout(b replay.Bounds, fill bool, heightPx int, dpi float64) Viewport {
	vp := baseViewport(b, fill, dpi)

	h := clampInt(heightPx, minHeightPx, maxHeightPx)
	w := clampInt(int(float64(h)*Aspect(b)), minWidthPx, maxWidthPx)
	vp.WidthPx = w
	vp.HeightPx = h
	return vp
}

// ExportViewport computes the viewport for file export: same padding
// and degenerate-bounds fallback as Layout, but the pixel size follows
// the requested height directly (width = height*aspect) with no
// interactive clamps, and the canvas is always used edge-to-edge.
func ExportViewport(b replay.Bounds, heightPx int, dpi float64) Viewport {
	vp := baseViewport(b, true, dpi)
	vp.HeightPx = heightPx
	vp.WidthPx = int(float64(heightPx) * Aspect(b))
	return vp
}

func baseViewport(b replay.Bounds, fill bool, dpi float64) Viewport {
	var x0, x1, y0, y1 float64
	if b.Degenerate() {
		x0, x1 = defaultMin, defaultMax
		y0, y1 = defaultMin, defaultMax
		// The default window goes through the same padding rule.
		b = replay.Bounds{MinX: x0, MaxX: x1, MinY: y0, MaxY: y1}
	}
	x0, x1, y0, y1 = padded(b)
	return Viewport{X0: x0, X1: x1, Y0: y0, Y1: y1, DPI: dpi, Fill: fill}
}

// padded applies the shared padding rule to non-degenerate bounds.
func padded(b replay.Bounds) (x0, x1, y0, y1 float64) {
	padX := math.Max(padMin, padFraction*b.Dx())
	padY := math.Max(padMin, padFraction*b.Dy())
	return b.MinX - padX, b.MaxX + padX, b.MinY - padY, b.MaxY + padY
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
