package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// setPx writes one pixel, clipped to the given rectangle. Out-of-image
// writes are already no-ops in image.RGBA; the clip keeps plot content
// out of the chrome margins.
func setPx(img *image.RGBA, x, y int, clip image.Rectangle, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(clip) {
		return
	}
	img.Set(x, y, c)
}

// blendPx alpha-blends c over the existing pixel. Used for the HUD
// panel background.
func blendPx(img *image.RGBA, x, y int, clip image.Rectangle, c color.RGBA, alpha float64) {
	if !(image.Point{X: x, Y: y}).In(clip) {
		return
	}
	r0, g0, b0, _ := img.At(x, y).RGBA()
	blend := func(src uint8, dst uint32) uint8 {
		return uint8(float64(src)*alpha + float64(dst>>8)*(1-alpha))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: blend(c.R, r0),
		G: blend(c.G, g0),
		B: blend(c.B, b0),
		A: 255,
	})
}

// drawLine draws a straight segment with the given thickness by
// stepping along the segment and offsetting along its normal.
func drawLine(img *image.RGBA, x1, y1, x2, y2, thickness float64, clip image.Rectangle, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}
	halfThick := thickness / 2

	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				setPx(img, int(x1+tx), int(y1+ty), clip, c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			setPx(img, int(cx+perpX*offset), int(cy+perpY*offset), clip, c)
		}
	}
}

// drawDottedLine draws a 2-on/2-off dotted segment (grid lines).
func drawDottedLine(img *image.RGBA, x1, y1, x2, y2 float64, clip image.Rectangle, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}
	for i := 0.0; i <= steps; i++ {
		if int(i)%4 >= 2 {
			continue
		}
		t := i / steps
		setPx(img, int(x1+dx*t), int(y1+dy*t), clip, c)
	}
}

// fillCircle fills a disc of radius r centered at (cx, cy).
func fillCircle(img *image.RGBA, cx, cy, r float64, clip image.Rectangle, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		span := math.Sqrt(math.Max(0, r*r-dy*dy))
		for dx := -span; dx <= span; dx++ {
			setPx(img, int(cx+dx), int(cy+dy), clip, c)
		}
	}
}

// strokeCircle draws a 1px circle outline (robot center edge).
func strokeCircle(img *image.RGBA, cx, cy, r float64, clip image.Rectangle, c color.Color) {
	for angle := 0.0; angle < 2*math.Pi; angle += 0.02 {
		setPx(img, int(cx+r*math.Cos(angle)), int(cy+r*math.Sin(angle)), clip, c)
	}
}

// drawXMarker draws an x-shaped marker with the given arm length.
func drawXMarker(img *image.RGBA, cx, cy, arm, thickness float64, clip image.Rectangle, c color.Color) {
	drawLine(img, cx-arm, cy-arm, cx+arm, cy+arm, thickness, clip, c)
	drawLine(img, cx-arm, cy+arm, cx+arm, cy-arm, thickness, clip, c)
}

// fillRect fills an axis-aligned rectangle.
func fillRect(img *image.RGBA, r image.Rectangle, clip image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPx(img, x, y, clip, c)
		}
	}
}

// blendRect alpha-blends a rectangle over the image.
func blendRect(img *image.RGBA, r image.Rectangle, clip image.Rectangle, c color.RGBA, alpha float64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			blendPx(img, x, y, clip, c, alpha)
		}
	}
}

// strokeRect draws a 1px rectangle outline.
func strokeRect(img *image.RGBA, r image.Rectangle, clip image.Rectangle, c color.Color) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		setPx(img, x, r.Min.Y, clip, c)
		setPx(img, x, r.Max.Y, clip, c)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		setPx(img, r.Min.X, y, clip, c)
		setPx(img, r.Max.X, y, clip, c)
	}
}

// drawString renders s with its baseline at (x, y).
func drawString(img *image.RGBA, face font.Face, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// measureString returns the advance width of s in pixels.
func measureString(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
