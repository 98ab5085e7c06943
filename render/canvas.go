// Package render rasterizes replay frames into RGBA images. One Canvas
// is created per run from the scene viewport and redrawn per frame;
// the drawing surface, world-to-pixel transform and font face are all
// reused across frames.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/baderabdallah/robot-mapping-warehouses/geometry"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
	"github.com/baderabdallah/robot-mapping-warehouses/scene"
)

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorRobot      = color.RGBA{31, 119, 180, 255}  // tab:blue
	colorCarrier    = color.RGBA{255, 127, 14, 255}  // tab:orange
	colorGrid       = color.RGBA{200, 200, 200, 255}
	colorBorder     = color.RGBA{120, 120, 120, 255}
	colorText       = color.RGBA{40, 40, 40, 255}
	colorHUDBox     = color.RGBA{0, 0, 0, 255}
	colorHUDText    = color.RGBA{255, 255, 255, 255}
)

const (
	outlineThickness = 2.0
	robotMarkerR     = 5.0
	carrierMarkerArm = 4.0
	hudAlpha         = 0.35
)

// Canvas draws frames into a fixed-size RGBA image.
type Canvas struct {
	vp   scene.Viewport
	img  *image.RGBA
	face font.Face

	// World-to-pixel transform (equal aspect, y up).
	scale  float64
	origin image.Point // pixel position of the world point (X0, Y0)
	plot   image.Rectangle
}

// NewCanvas allocates the drawing surface for the given viewport.
func NewCanvas(vp scene.Viewport) (*Canvas, error) {
	if vp.WidthPx <= 0 || vp.HeightPx <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", vp.WidthPx, vp.HeightPx)
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parsing embedded font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    13,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: creating font face: %w", err)
	}

	c := &Canvas{
		vp:   vp,
		img:  image.NewRGBA(image.Rect(0, 0, vp.WidthPx, vp.HeightPx)),
		face: face,
	}
	c.plot = c.plotRect()

	// Equal data aspect: one scale for both axes, data window centered
	// inside the plot rectangle.
	worldW := vp.X1 - vp.X0
	worldH := vp.Y1 - vp.Y0
	c.scale = math.Min(
		float64(c.plot.Dx())/worldW,
		float64(c.plot.Dy())/worldH,
	)
	usedW := int(worldW * c.scale)
	usedH := int(worldH * c.scale)
	c.origin = image.Point{
		X: c.plot.Min.X + (c.plot.Dx()-usedW)/2,
		Y: c.plot.Max.Y - (c.plot.Dy()-usedH)/2,
	}

	return c, nil
}

// plotRect reserves chrome margins unless the viewport fills the
// canvas edge-to-edge: left 3%, right 0.5%, top 3%, bottom 5%.
func (c *Canvas) plotRect() image.Rectangle {
	full := c.img.Bounds()
	if c.vp.Fill {
		return full
	}
	w := float64(full.Dx())
	h := float64(full.Dy())
	return image.Rect(
		full.Min.X+int(0.03*w),
		full.Min.Y+int(0.03*h),
		full.Max.X-int(0.005*w),
		full.Max.Y-int(0.05*h),
	)
}

// toPixel maps a world point to canvas pixels (y axis flipped).
func (c *Canvas) toPixel(p r2.Point) (float64, float64) {
	return float64(c.origin.X) + (p.X-c.vp.X0)*c.scale,
		float64(c.origin.Y) - (p.Y-c.vp.Y0)*c.scale
}

// Image returns the underlying drawing surface. The returned image is
// overwritten on the next DrawFrame call.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Size returns the canvas pixel dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.vp.WidthPx, c.vp.HeightPx
}

// Viewport returns the viewport the canvas was built from.
func (c *Canvas) Viewport() scene.Viewport { return c.vp }

// DrawFrame renders one frame. In chrome mode it draws the grid,
// border, legend and a "t=<timestamp>" title; in fill mode the data
// covers the whole canvas and hud (when non-empty) is overlaid
// top-left as white-on-dark text, one line per \n.
func (c *Canvas) DrawFrame(f *replay.Frame, hud string) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	if !c.vp.Fill {
		c.drawGrid()
		strokeRect(c.img, c.plot, c.img.Bounds(), colorBorder)
	}

	c.drawOutline(f.RobotOutline, colorRobot)
	c.drawOutline(f.CarriersOutline, colorCarrier)

	// Robot center: filled dot with a dark edge.
	px, py := c.toPixel(f.RobotCenter)
	fillCircle(c.img, px, py, robotMarkerR, c.plot, colorRobot)
	strokeCircle(c.img, px, py, robotMarkerR, c.plot, color.RGBA{0, 0, 0, 255})

	// Carrier centers: x markers.
	for _, center := range f.CarrierCenters {
		mx, my := c.toPixel(center)
		drawXMarker(c.img, mx, my, carrierMarkerArm, 1, c.plot, colorCarrier)
	}

	if !c.vp.Fill {
		c.drawLegend()
		if f.Timestamp != "" {
			title := "t=" + f.Timestamp
			x := c.img.Bounds().Dx()/2 - measureString(c.face, title)/2
			drawString(c.img, c.face, x, c.plot.Min.Y-4, title, colorText)
		}
	} else if hud != "" {
		c.drawHUD(hud)
	}
}

// drawOutline renders a gap-separated polyline. Non-finite points are
// path breaks only; they never reach the line rasterizer.
func (c *Canvas) drawOutline(pts []r2.Point, col color.RGBA) {
	havePrev := false
	var prevX, prevY float64
	for _, p := range pts {
		if geometry.IsGap(p) {
			havePrev = false
			continue
		}
		x, y := c.toPixel(p)
		if havePrev {
			drawLine(c.img, prevX, prevY, x, y, outlineThickness, c.plot, col)
		}
		prevX, prevY = x, y
		havePrev = true
	}
}

func (c *Canvas) drawGrid() {
	stepX := niceStep(c.vp.X1 - c.vp.X0)
	stepY := niceStep(c.vp.Y1 - c.vp.Y0)

	for x := math.Ceil(c.vp.X0/stepX) * stepX; x <= c.vp.X1; x += stepX {
		px, _ := c.toPixel(r2.Point{X: x, Y: c.vp.Y0})
		drawDottedLine(c.img, px, float64(c.plot.Min.Y), px, float64(c.plot.Max.Y), c.plot, colorGrid)
		label := trimFloat(x)
		drawString(c.img, c.face, int(px)-measureString(c.face, label)/2, c.plot.Max.Y+14, label, colorText)
	}
	for y := math.Ceil(c.vp.Y0/stepY) * stepY; y <= c.vp.Y1; y += stepY {
		_, py := c.toPixel(r2.Point{X: c.vp.X0, Y: y})
		drawDottedLine(c.img, float64(c.plot.Min.X), py, float64(c.plot.Max.X), py, c.plot, colorGrid)
		label := trimFloat(y)
		drawString(c.img, c.face, c.plot.Min.X-measureString(c.face, label)-4, int(py)+4, label, colorText)
	}
}

func (c *Canvas) drawLegend() {
	entries := []struct {
		label  string
		col    color.RGBA
		marker byte // 'l' line, 'o' dot, 'x' cross
	}{
		{"Robot shape", colorRobot, 'l'},
		{"Carriers shape", colorCarrier, 'l'},
		{"Robot center", colorRobot, 'o'},
		{"Carrier centers", colorCarrier, 'x'},
	}

	const (
		lineH   = 18
		sample  = 22
		padding = 8
	)
	maxW := 0
	for _, e := range entries {
		if w := measureString(c.face, e.label); w > maxW {
			maxW = w
		}
	}
	boxW := padding*2 + sample + 6 + maxW
	boxH := padding*2 + lineH*len(entries)
	box := image.Rect(
		c.plot.Max.X-boxW-10, c.plot.Min.Y+10,
		c.plot.Max.X-10, c.plot.Min.Y+10+boxH,
	)

	fillRect(c.img, box, c.img.Bounds(), colorBackground)
	strokeRect(c.img, box, c.img.Bounds(), colorBorder)

	for i, e := range entries {
		cy := box.Min.Y + padding + i*lineH + lineH/2
		sx := box.Min.X + padding
		switch e.marker {
		case 'l':
			drawLine(c.img, float64(sx), float64(cy), float64(sx+sample), float64(cy), outlineThickness, c.img.Bounds(), e.col)
		case 'o':
			fillCircle(c.img, float64(sx+sample/2), float64(cy), 4, c.img.Bounds(), e.col)
			strokeCircle(c.img, float64(sx+sample/2), float64(cy), 4, c.img.Bounds(), color.RGBA{0, 0, 0, 255})
		case 'x':
			drawXMarker(c.img, float64(sx+sample/2), float64(cy), 4, 1, c.img.Bounds(), e.col)
		}
		drawString(c.img, c.face, sx+sample+6, cy+4, e.label, colorText)
	}
}

func (c *Canvas) drawHUD(hud string) {
	lines := strings.Split(hud, "\n")
	const lineH = 16
	maxW := 0
	for _, line := range lines {
		if w := measureString(c.face, line); w > maxW {
			maxW = w
		}
	}
	box := image.Rect(8, 8, 8+maxW+16, 8+len(lines)*lineH+10)
	blendRect(c.img, box, c.img.Bounds(), colorHUDBox, hudAlpha)
	for i, line := range lines {
		drawString(c.img, c.face, box.Min.X+8, box.Min.Y+8+(i+1)*lineH-4, line, colorHUDText)
	}
}

// niceStep picks a 1/2/5-series grid step giving roughly 6 divisions.
func niceStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	raw := span / 6
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag >= 5:
		return 5 * mag
	case raw/mag >= 2:
		return 2 * mag
	default:
		return mag
	}
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
