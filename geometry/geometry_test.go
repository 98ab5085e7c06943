package geometry

import (
	"math"
	"math/rand"
	"testing"
)

// TestRegularPolygon_Closure verifies that a polygon with n
// sides yields exactly n+1 vertices with the first repeated as the last.
func TestRegularPolygon_Closure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for sides := 3; sides <= 12; sides++ {
		cx := rng.Float64()*40 - 20
		cy := rng.Float64()*40 - 20
		radius := rng.Float64() * 3
		rotation := rng.Float64()*8*math.Pi - 4*math.Pi

		pts := RegularPolygon(sides, cx, cy, radius, rotation)
		if len(pts) != sides+1 {
			t.Fatalf("sides=%d: got %d vertices, want %d", sides, len(pts), sides+1)
		}

		first, last := pts[0], pts[sides]
		if math.Abs(first.X-last.X) > 1e-9 || math.Abs(first.Y-last.Y) > 1e-9 {
			t.Errorf("sides=%d: shape not closed, first=%v last=%v", sides, first, last)
		}
	}
}

// TestRegularPolygon_VertexPlacement pins the vertex angle formula:
// vertex s sits at 2*pi*s/sides + rotation + pi.
func TestRegularPolygon_VertexPlacement(t *testing.T) {
	pts := RegularPolygon(4, 1, 2, 2, 0)

	// Vertex 0 at angle pi: (1-2, 2).
	if math.Abs(pts[0].X-(-1)) > 1e-9 || math.Abs(pts[0].Y-2) > 1e-9 {
		t.Errorf("vertex 0 = %v, want (-1, 2)", pts[0])
	}
	// Vertex 1 at angle 3*pi/2: (1, 2-2).
	if math.Abs(pts[1].X-1) > 1e-9 || math.Abs(pts[1].Y-0) > 1e-9 {
		t.Errorf("vertex 1 = %v, want (1, 0)", pts[1])
	}
}

// TestDirectionRay_SegmentLength verifies the fixed 0.7
// segment length for arbitrary start points and angles.
func TestDirectionRay_SegmentLength(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 50; i++ {
		x := rng.Float64()*100 - 50
		y := rng.Float64()*100 - 50
		angle := rng.Float64()*8*math.Pi - 4*math.Pi

		pts := DirectionRay(x, y, angle)
		if len(pts) < 2 {
			t.Fatalf("ray has %d points", len(pts))
		}
		dx := pts[1].X - pts[0].X
		dy := pts[1].Y - pts[0].Y
		dist := math.Hypot(dx, dy)
		if math.Abs(dist-0.7) > 1e-9 {
			t.Errorf("angle=%.3f: segment length %.12f, want 0.7", angle, dist)
		}
	}
}

func TestDirectionRay_EndsWithGap(t *testing.T) {
	pts := DirectionRay(0, 0, 0)
	if !IsGap(pts[len(pts)-1]) {
		t.Error("ray does not end with a gap marker")
	}
}

// TestObjectOutline_GapCountInvariant verifies the gap-marker
// count in one outline is always 2 regardless of pose and shape.
func TestObjectOutline_GapCountInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		x := rng.Float64()*50 - 25
		y := rng.Float64()*50 - 25
		heading := rng.Float64() * 2 * math.Pi
		sides := 3 + rng.Intn(8)
		radius := rng.Float64() * 2
		offset := rng.Float64() * math.Pi

		pts := ObjectOutline(x, y, heading, sides, radius, offset)
		gaps := 0
		for _, p := range pts {
			if IsGap(p) {
				gaps++
			}
		}
		if gaps != 2 {
			t.Fatalf("outline has %d gap markers, want 2 (sides=%d radius=%.3f)", gaps, sides, radius)
		}

		// The first gap separates the silhouette from the ray.
		if !IsGap(pts[sides+1]) {
			t.Errorf("expected gap marker after %d silhouette vertices", sides+1)
		}
	}
}

func TestCarriersOutline(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		if pts := CarriersOutline(nil); len(pts) != 0 {
			t.Errorf("got %d points for empty pose list", len(pts))
		}
	})

	t.Run("concatenation in input order", func(t *testing.T) {
		a := CarriersOutline([]Pose{{X: 1, Y: 1}})
		b := CarriersOutline([]Pose{{X: 1, Y: 1}, {X: -3, Y: 2, Theta: 1.2}})
		if len(b) != 2*len(a) {
			t.Fatalf("two carriers yield %d points, one yields %d", len(b), len(a))
		}
		for i, p := range a {
			if !IsGap(p) && b[i] != p {
				t.Fatalf("point %d differs between single and concatenated outlines", i)
			}
		}
	})

	t.Run("pointer tracks raw heading", func(t *testing.T) {
		// With theta=0 the ray must run along +x: heading is biased
		// +pi/4 but the ray offset removes the bias again.
		pts := CarriersOutline([]Pose{{X: 1, Y: 1}})
		// Ray start follows silhouette (5 points) and one gap.
		start, end := pts[6], pts[7]
		if math.Abs(start.X-1) > 1e-9 || math.Abs(start.Y-1) > 1e-9 {
			t.Fatalf("ray start = %v, want (1, 1)", start)
		}
		if math.Abs(end.X-1.7) > 1e-9 || math.Abs(end.Y-1) > 1e-9 {
			t.Errorf("ray end = %v, want (1.7, 1)", end)
		}
	})
}
