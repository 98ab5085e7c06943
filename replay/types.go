package replay

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/baderabdallah/robot-mapping-warehouses/geometry"
)

// Frame is one timestep's combined robot + carrier drawable state,
// derived from one paired (robot pose, detection) entry. Frames are
// immutable once built.
type Frame struct {
	// Index is the position of the frame in the replay.
	Index int
	// RobotOutline is the robot silhouette plus heading ray. May
	// contain gap markers (see geometry.IsGap).
	RobotOutline []r2.Point
	// CarriersOutline concatenates all carrier outlines, in the order
	// the detection entry listed them.
	CarriersOutline []r2.Point
	// RobotCenter is the robot pose position.
	RobotCenter r2.Point
	// CarrierCenters holds one center per carrier, input order.
	CarrierCenters []r2.Point
	// Timestamp is a display label: the robot entry's time field,
	// falling back to the detection entry's, falling back to "".
	Timestamp string
	// TraceID is a unique identifier for tracing a frame through the
	// render/encode path.
	TraceID string
}

// Bounds is the axis-aligned box enclosing every finite outline
// coordinate across all frames. A freshly accumulated Bounds starts at
// infinities; it stays degenerate when no finite coordinate was seen.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// NewBounds returns an empty (degenerate) Bounds.
func NewBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
}

// Extend grows the bounds to include p. Gap markers are skipped; they
// are path breaks, not data.
func (b *Bounds) Extend(p r2.Point) {
	if geometry.IsGap(p) {
		return
	}
	b.MinX = math.Min(b.MinX, p.X)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// ExtendAll grows the bounds to include every finite point in pts.
func (b *Bounds) ExtendAll(pts []r2.Point) {
	for _, p := range pts {
		b.Extend(p)
	}
}

// Degenerate reports whether the bounds enclose no usable area. Layout
// code must substitute a fixed default viewport in that case.
func (b Bounds) Degenerate() bool {
	return !(b.MinX < b.MaxX && b.MinY < b.MaxY)
}

// Dx returns the x extent.
func (b Bounds) Dx() float64 { return b.MaxX - b.MinX }

// Dy returns the y extent.
func (b Bounds) Dy() float64 { return b.MaxY - b.MinY }
