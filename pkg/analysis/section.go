// Package analysis implements the read-only queries that run against a
// loaded model: planar cross-sections, pick-based measurements,
// curvature and elevation fields, and triangle quality. Nothing in
// this package mutates a mesh.
package analysis

import (
	"context"
	"math"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

// Exact sections of analytic shapes run on a mesh refined well past
// the display tolerance
const exactRefinement = 8

// Polyline is an ordered chain of points on a section plane. Closed
// contours come from cuts fully inside the model; open chains appear
// when the plane exits through a mesh boundary.
type Polyline struct {
	Points []geometry.Vector3
	Closed bool
}

// Length returns the total length of the polyline, including the
// closing segment for closed contours
func (p Polyline) Length() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i].Distance(p.Points[i-1])
	}
	if p.Closed {
		total += p.Points[0].Distance(p.Points[len(p.Points)-1])
	}
	return total
}

// CrossSection is the result of cutting a model with a plane.
// Distances holds the signed distance of every display-mesh vertex
// from the plane, for hiding the behind half during a reveal.
type CrossSection struct {
	Plane     geometry.Plane
	Contours  []Polyline
	Distances []float64
}

// Perimeter returns the summed length of all contours
func (cs CrossSection) Perimeter() float64 {
	total := 0.0
	for _, c := range cs.Contours {
		total += c.Length()
	}
	return total
}

// IsEmpty reports whether the plane missed the model entirely
func (cs CrossSection) IsEmpty() bool {
	return len(cs.Contours) == 0
}

// FitCircle fits a circle to the contour points projected onto the
// section plane, for radius readouts on round cuts
func (cs CrossSection) FitCircle(contour int) (*geometry.CircleFit, error) {
	return geometry.FitCircleToPoints(cs.Contours[contour].Points, cs.Plane)
}

// Section cuts the model with a plane. Exact models are re-tessellated
// at a tolerance well below the display tolerance before cutting, so
// the contour tracks the analytic surface; mesh-only models are cut as
// imported.
func Section(ctx context.Context, h *brep.Handle, display *mesh.Mesh, plane geometry.Plane, tolerance float64) (CrossSection, error) {
	m := display
	if h != nil && h.Kind == brep.Exact {
		refined, err := tessellate.Tessellate(ctx, h.Shape, tolerance/exactRefinement)
		if err != nil {
			return CrossSection{}, err
		}
		m = refined
	}
	if err := ctx.Err(); err != nil {
		return CrossSection{}, err
	}
	cs := SectionMesh(m, plane)
	// Classification always refers to the display mesh, even when the
	// contour came from a refined one.
	cs.Distances = SignedDistances(display, plane)
	return cs, nil
}

// SignedDistances returns the signed distance of every vertex from the
// plane
func SignedDistances(m *mesh.Mesh, plane geometry.Plane) []float64 {
	out := make([]float64, m.VertexCount())
	for i, p := range m.Positions {
		out[i] = plane.SignedDistance(p)
	}
	return out
}

// SectionMesh intersects every triangle with the plane and assembles
// the resulting cut edges into contours
func SectionMesh(m *mesh.Mesh, plane geometry.Plane) CrossSection {
	cs := CrossSection{Plane: plane}

	bounds := m.BoundingBox()
	if bounds.IsEmpty() {
		return cs
	}
	// Quick reject when the plane misses the bounds entirely
	if !planeTouchesBounds(plane, bounds) {
		return cs
	}

	weld := bounds.Diagonal()*1e-9 + 1e-12

	var segments []geometry.Segment
	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		if seg, ok := cutTriangle(tri, plane, weld); ok {
			segments = append(segments, seg)
		}
	}
	// A plane through a ring of mesh edges yields each on-plane edge
	// twice, once from the triangle on either side; the duplicates
	// would fragment loop assembly.
	segments = dedupeSegments(segments, weld)

	for _, loop := range geometry.OrderSegmentsIntoLoops(segments, weld) {
		cs.Contours = append(cs.Contours, Polyline{Points: loop.Points, Closed: loop.Closed})
	}
	cs.Distances = SignedDistances(m, plane)
	return cs
}

// dedupeSegments drops segments that repeat an already collected one
// in either direction
func dedupeSegments(segments []geometry.Segment, weld float64) []geometry.Segment {
	out := make([]geometry.Segment, 0, len(segments))
	for _, s := range segments {
		dup := false
		for _, k := range out {
			if (s.A.Distance(k.A) <= weld && s.B.Distance(k.B) <= weld) ||
				(s.A.Distance(k.B) <= weld && s.B.Distance(k.A) <= weld) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

// planeTouchesBounds reports whether the plane intersects the box by
// checking the signed distances of its corners
func planeTouchesBounds(plane geometry.Plane, b geometry.BoundingBox) bool {
	sawNeg, sawPos := false, false
	for _, x := range []float64{b.Min.X, b.Max.X} {
		for _, y := range []float64{b.Min.Y, b.Max.Y} {
			for _, z := range []float64{b.Min.Z, b.Max.Z} {
				d := plane.SignedDistance(geometry.Vector3{X: x, Y: y, Z: z})
				if d < 0 {
					sawNeg = true
				}
				if d >= 0 {
					sawPos = true
				}
			}
		}
	}
	return sawNeg && sawPos
}

// cutTriangle intersects one triangle with the plane. A triangle
// crossing the plane contributes exactly one cut edge; triangles that
// only touch the plane at a vertex contribute nothing.
func cutTriangle(tri geometry.Triangle, plane geometry.Plane, weld float64) (geometry.Segment, bool) {
	v := [3]geometry.Vector3{tri.V1, tri.V2, tri.V3}
	var d [3]float64
	for i := range v {
		d[i] = plane.SignedDistance(v[i])
	}

	// A triangle lying in the plane has no unique cut edge; its
	// neighbors off the plane contribute the outline
	if d[0] == 0 && d[1] == 0 && d[2] == 0 {
		return geometry.Segment{}, false
	}

	var points []geometry.Vector3
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if d[i] == 0 {
			points = append(points, v[i])
			continue
		}
		if (d[i] > 0) != (d[j] > 0) && d[j] != 0 {
			t := d[i] / (d[i] - d[j])
			points = append(points, v[i].Lerp(v[j], t))
		}
	}

	// Deduplicate touch points
	var distinct []geometry.Vector3
	for _, p := range points {
		dup := false
		for _, q := range distinct {
			if p.Distance(q) <= weld {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, p)
		}
	}
	if len(distinct) < 2 {
		return geometry.Segment{}, false
	}
	return geometry.Segment{A: distinct[0], B: distinct[1]}, true
}

// AxisSection is a convenience for the common axis-aligned cut at a
// fraction of the model extent along the axis
func AxisSection(ctx context.Context, h *brep.Handle, display *mesh.Mesh, axis int, fraction, tolerance float64) (CrossSection, error) {
	bounds := display.BoundingBox()
	if h != nil && h.Kind == brep.Exact {
		bounds = h.Shape.BoundingBox()
	}
	lo := bounds.Min.Component(axis)
	hi := bounds.Max.Component(axis)
	position := lo + (hi-lo)*math.Max(0, math.Min(1, fraction))

	through := bounds.Center()
	switch axis {
	case 0:
		through.X = position
	case 1:
		through.Y = position
	default:
		through.Z = position
	}
	return Section(ctx, h, display, geometry.AxisPlane(axis, through), tolerance)
}
