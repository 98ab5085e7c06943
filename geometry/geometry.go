// Package geometry builds drawable outlines for the robot and carrier
// shapes from 2D poses.
//
// All functions are pure and total over numeric input: any rotation,
// radius or pose is accepted and drawn as given. Outlines are flat
// point sequences in world coordinates; disjoint sub-paths within one
// outline are separated by gap markers (NaN point pairs) so a single
// polyline primitive can render several shapes in one pass.
//
// Consumers must treat a non-finite point as a path break, never as
// data. Bounds accumulation and rendering both skip gap markers.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Shape parameters. The robot is drawn as a pentagon, carriers as
// diamonds whose pointer direction is offset 45 degrees from the raw
// heading.
const (
	RobotSides  = 5
	RobotRadius = 0.5

	CarrierSides       = 4
	CarrierRadius      = 0.8
	CarrierAngleOffset = math.Pi / 4

	rayLength     = 0.7
	pointerSides  = 3
	pointerRadius = 0.07
)

// Pose is a 2D pose in the global frame. Theta is in radians.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// Gap returns a gap marker: a point whose coordinates are both NaN.
func Gap() r2.Point {
	return r2.Point{X: math.NaN(), Y: math.NaN()}
}

// IsGap reports whether p is a gap marker. Any point with a non-finite
// component breaks the path.
func IsGap(p r2.Point) bool {
	return !finite(p.X) || !finite(p.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RegularPolygon returns the sides+1 vertices of a regular polygon
// circumscribed at radius around (cx, cy). The first vertex is repeated
// as the last so the shape closes under line drawing. Vertex s sits at
// angle 2*pi*s/sides + rotation + pi.
func RegularPolygon(sides int, cx, cy, radius, rotation float64) []r2.Point {
	theta := rotation + math.Pi
	pts := make([]r2.Point, 0, sides+1)
	for s := 0; s <= sides; s++ {
		t := 2*math.Pi*float64(s)/float64(sides) + theta
		pts = append(pts, r2.Point{
			X: radius*math.Cos(t) + cx,
			Y: radius*math.Sin(t) + cy,
		})
	}
	return pts
}

// DirectionRay returns a heading indicator: a segment of length 0.7
// from (x, y) in the given direction, an arrowhead (3-sided pointer of
// radius 0.07 at the segment end, rotated angle+pi), and a trailing gap
// marker that terminates the sub-path.
func DirectionRay(x, y, angle float64) []r2.Point {
	end := r2.Point{
		X: x + rayLength*math.Cos(angle),
		Y: y + rayLength*math.Sin(angle),
	}
	pts := make([]r2.Point, 0, 2+pointerSides+2)
	pts = append(pts, r2.Point{X: x, Y: y}, end)
	pts = append(pts, RegularPolygon(pointerSides, end.X, end.Y, pointerRadius, angle+math.Pi)...)
	return append(pts, Gap())
}

// ObjectOutline composes the full drawable outline of one oriented
// body: the polygon silhouette, a gap marker, then a direction ray from
// the same center at heading-offset. The gap-marker count per call is
// invariant (one after the silhouette, one inside the ray).
func ObjectOutline(x, y, heading float64, sides int, radius, offset float64) []r2.Point {
	pts := RegularPolygon(sides, x, y, radius, heading)
	pts = append(pts, Gap())
	return append(pts, DirectionRay(x, y, heading-offset)...)
}

// RobotOutline returns the robot silhouette (pentagon, radius 0.5) plus
// heading ray for the given pose.
func RobotOutline(x, y, heading float64) []r2.Point {
	return ObjectOutline(x, y, heading, RobotSides, RobotRadius, 0)
}

// CarriersOutline concatenates the outlines of every carrier pose in
// input order. Carriers are diamonds (4 sides, radius 0.8) with the
// heading biased by +pi/4 and the ray offset by pi/4, so the pointer
// tracks the raw heading while the silhouette renders as a diamond.
// An empty pose list yields an empty outline.
func CarriersOutline(poses []Pose) []r2.Point {
	var pts []r2.Point
	for _, p := range poses {
		pts = append(pts, ObjectOutline(
			p.X, p.Y,
			p.Theta+CarrierAngleOffset,
			CarrierSides, CarrierRadius,
			CarrierAngleOffset,
		)...)
	}
	return pts
}
