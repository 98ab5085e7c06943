package render

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/baderabdallah/robot-mapping-warehouses/geometry"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
	"github.com/baderabdallah/robot-mapping-warehouses/scene"
)

func testFrame() *replay.Frame {
	return &replay.Frame{
		RobotOutline: geometry.RobotOutline(2, 2, 0),
		CarriersOutline: geometry.CarriersOutline([]geometry.Pose{
			{X: 6, Y: 6, Theta: 0},
		}),
		RobotCenter:    r2.Point{X: 2, Y: 2},
		CarrierCenters: []r2.Point{{X: 6, Y: 6}},
		Timestamp:      "t1",
	}
}

func testBounds() replay.Bounds {
	b := replay.NewBounds()
	f := testFrame()
	b.ExtendAll(f.RobotOutline)
	b.ExtendAll(f.CarriersOutline)
	return b
}

func countColor(c *Canvas, want color.RGBA) int {
	n := 0
	b := c.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.Image().RGBAAt(x, y) == want {
				n++
			}
		}
	}
	return n
}

func TestNewCanvas_Size(t *testing.T) {
	vp := scene.ExportViewport(testBounds(), 300, 100)
	c, err := NewCanvas(vp)
	if err != nil {
		t.Fatalf("NewCanvas() error: %v", err)
	}
	w, h := c.Size()
	if h != 300 {
		t.Errorf("height = %d, want 300", h)
	}
	if w != vp.WidthPx {
		t.Errorf("width = %d, want %d", w, vp.WidthPx)
	}
}

func TestNewCanvas_RejectsEmptyViewport(t *testing.T) {
	if _, err := NewCanvas(scene.Viewport{}); err == nil {
		t.Error("expected error for zero-size canvas")
	}
}

// TestDrawFrame_GapMarkersAreNotDrawn verifies that NaN points in the
// outline never panic the rasterizer and that both shapes show up.
func TestDrawFrame_GapMarkersAreNotDrawn(t *testing.T) {
	vp := scene.ExportViewport(testBounds(), 300, 100)
	c, err := NewCanvas(vp)
	if err != nil {
		t.Fatalf("NewCanvas() error: %v", err)
	}

	c.DrawFrame(testFrame(), "")

	if n := countColor(c, colorRobot); n == 0 {
		t.Error("no robot-colored pixels drawn")
	}
	if n := countColor(c, colorCarrier); n == 0 {
		t.Error("no carrier-colored pixels drawn")
	}
}

func TestDrawFrame_ChromeAndFillModes(t *testing.T) {
	b := testBounds()

	chrome, err := NewCanvas(scene.Layout(b, false, 600, 100))
	if err != nil {
		t.Fatalf("NewCanvas(chrome) error: %v", err)
	}
	chrome.DrawFrame(testFrame(), "")
	if n := countColor(chrome, colorGrid); n == 0 {
		t.Error("chrome mode drew no grid")
	}

	fill, err := NewCanvas(scene.Layout(b, true, 600, 100))
	if err != nil {
		t.Fatalf("NewCanvas(fill) error: %v", err)
	}
	// Grid check without HUD text: antialiased text pixels can land on
	// the exact grid color by coincidence.
	fill.DrawFrame(testFrame(), "")
	if n := countColor(fill, colorGrid); n != 0 {
		t.Error("fill mode drew chrome grid")
	}

	// The HUD panel blends a dark box over the top-left corner.
	fill.DrawFrame(testFrame(), "Frame 1/10")
	if px := fill.Image().RGBAAt(10, 10); px == colorBackground {
		t.Error("fill mode drew no HUD panel")
	}
}

func TestDrawFrame_BackgroundIsWhite(t *testing.T) {
	vp := scene.ExportViewport(testBounds(), 240, 100)
	c, err := NewCanvas(vp)
	if err != nil {
		t.Fatalf("NewCanvas() error: %v", err)
	}
	c.DrawFrame(testFrame(), "")

	if px := c.Image().RGBAAt(0, 0); px != colorBackground {
		t.Errorf("corner pixel = %v, want white", px)
	}
}
