package analysis

import (
	"math"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Pick is a resolved position on the model surface. VertexIndex is -1
// when the pick landed on a face interior instead of snapping to a
// vertex.
type Pick struct {
	Point       geometry.Vector3
	FaceIndex   int
	VertexIndex int
}

// ResolvePick casts the ray against the mesh and returns the nearest
// hit, snapped to the closest triangle vertex when one lies within
// snapRadius of the hit point. When the ray misses every triangle the
// pick falls back to the nearest vertex within snapRadius of the ray.
func ResolvePick(m *mesh.Mesh, ray geometry.Ray, snapRadius float64) (Pick, bool) {
	bestT := -1.0
	pick := Pick{FaceIndex: -1, VertexIndex: -1}

	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		point, t, hit := ray.IntersectTriangle(tri)
		if !hit {
			continue
		}
		if bestT < 0 || t < bestT {
			bestT = t
			pick.Point = point
			pick.FaceIndex = i
		}
	}

	if bestT >= 0 {
		if vi, ok := snapToFaceVertex(m, pick.FaceIndex, pick.Point, snapRadius); ok {
			pick.VertexIndex = vi
			pick.Point = m.Positions[vi]
		}
		return pick, true
	}

	// Miss: fall back to the nearest vertex close to the ray
	return nearestVertexToRay(m, ray, snapRadius)
}

func snapToFaceVertex(m *mesh.Mesh, face int, point geometry.Vector3, snapRadius float64) (int, bool) {
	best := -1
	bestDist := snapRadius
	for _, vi := range m.Faces[face] {
		if d := m.Positions[vi].Distance(point); d <= bestDist {
			best = vi
			bestDist = d
		}
	}
	return best, best >= 0
}

func nearestVertexToRay(m *mesh.Mesh, ray geometry.Ray, snapRadius float64) (Pick, bool) {
	best := -1
	bestDist := snapRadius
	for i, p := range m.Positions {
		if d := ray.ClosestPointTo(p).Distance(p); d <= bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Pick{FaceIndex: -1, VertexIndex: -1}, false
	}
	return Pick{Point: m.Positions[best], FaceIndex: -1, VertexIndex: best}, true
}

// ResolvePickOn resolves a pick against the display mesh and, for
// exact models, projects an interior hit from the chordal triangle back
// onto the nearest analytic surface. Vertex snaps are kept as picked.
func ResolvePickOn(h *brep.Handle, m *mesh.Mesh, ray geometry.Ray, snapRadius float64) (Pick, bool) {
	pick, ok := ResolvePick(m, ray, snapRadius)
	if !ok || pick.VertexIndex >= 0 {
		return pick, ok
	}
	if h != nil && h.Kind == brep.Exact && h.Shape != nil {
		pick.Point = ProjectToSurface(h.Shape, pick.Point)
	}
	return pick, true
}

// ProjectToSurface moves a point onto the nearest analytic face of the
// shape
func ProjectToSurface(shape *brep.Shape, p geometry.Vector3) geometry.Vector3 {
	best := math.Inf(1)
	out := p
	for _, face := range shape.Faces {
		u, v, dist := face.Surface.UV(p)
		if dist < best {
			best = dist
			out = face.Surface.Point(u, v)
		}
	}
	return out
}

// NearestVertex returns the index of the mesh vertex closest to a
// point in space
func NearestVertex(m *mesh.Mesh, point geometry.Vector3) int {
	best := -1
	bestDist := 0.0
	for i, p := range m.Positions {
		d := p.Distance(point)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Measurement is the distance between two resolved picks
type Measurement struct {
	A, B     Pick
	Distance float64
}

// Measure computes the distance between two picks. The result is
// symmetric in its arguments.
func Measure(a, b Pick) Measurement {
	return Measurement{A: a, B: b, Distance: a.Point.Distance(b.Point)}
}
