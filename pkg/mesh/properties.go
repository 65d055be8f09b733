package mesh

import (
	"github.com/polarbearcad/polarbear/pkg/geometry"
)

// Properties holds the geometric measures derived from a mesh. Volume
// is only meaningful when Closed is true; callers presenting an open
// mesh should mark the value as unreliable.
type Properties struct {
	VertexCount int
	FaceCount   int
	SurfaceArea float64
	Volume      float64
	Closed      bool
	Centroid    geometry.Vector3
	Bounds      geometry.BoundingBox
}

// ComputeProperties derives area, volume, centroid and bounds in a
// single pass over the faces
func ComputeProperties(m *Mesh) Properties {
	props := Properties{
		VertexCount: m.VertexCount(),
		FaceCount:   m.FaceCount(),
		Bounds:      m.BoundingBox(),
		Closed:      m.IsClosed(),
	}

	var weightedCentroid geometry.Vector3
	for i := range m.Faces {
		tri := m.Triangle(i)
		area := tri.Area()
		props.SurfaceArea += area
		weightedCentroid = weightedCentroid.Add(tri.Center().Mul(area))
		props.Volume += signedTetraVolume(tri)
	}
	if props.SurfaceArea > 0 {
		props.Centroid = weightedCentroid.Mul(1 / props.SurfaceArea)
	}
	if !props.Closed {
		props.Volume = 0
	} else if props.Volume < 0 {
		// Inward winding still encloses the same space
		props.Volume = -props.Volume
	}
	return props
}

// signedTetraVolume returns the signed volume of the tetrahedron
// spanned by the triangle and the origin. Summed over a closed mesh
// the interior cancels and the enclosed volume remains.
func signedTetraVolume(tri geometry.Triangle) float64 {
	return tri.V1.Dot(tri.V2.Cross(tri.V3)) / 6
}

// Area returns the total surface area of the mesh
func Area(m *Mesh) float64 {
	total := 0.0
	for i := range m.Faces {
		total += m.Triangle(i).Area()
	}
	return total
}

// Volume returns the enclosed volume and whether the mesh is closed.
// For open meshes the volume is 0 and ok is false.
func Volume(m *Mesh) (volume float64, ok bool) {
	if !m.IsClosed() {
		return 0, false
	}
	total := 0.0
	for i := range m.Faces {
		total += signedTetraVolume(m.Triangle(i))
	}
	if total < 0 {
		total = -total
	}
	return total, true
}
