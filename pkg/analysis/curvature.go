package analysis

import (
	"math"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Curvature computes per-vertex curvature over the display mesh. When
// the handle carries analytic surfaces, each vertex is inverted onto
// its nearest surface and the principal curvatures are evaluated
// exactly; mesh-only handles fall back to the discrete estimates.
func Curvature(h *brep.Handle, m *mesh.Mesh, kind FieldKind) Field {
	if h != nil && h.Kind == brep.Exact && h.Shape != nil && len(h.Shape.Faces) > 0 {
		return exactCurvature(h.Shape, m, kind)
	}
	if kind == FieldMeanCurvature {
		return MeanCurvature(m)
	}
	return GaussianCurvature(m)
}

func exactCurvature(shape *brep.Shape, m *mesh.Mesh, kind FieldKind) Field {
	n := m.VertexCount()
	field := Field{Kind: kind, PerVertex: make([]float64, n), Unstable: make([]bool, n)}

	// Vertices further than this from every surface did not come from
	// this shape; their curvature is not meaningful.
	maxDist := shape.BoundingBox().Diagonal()*1e-6 + 1e-12

	for i, p := range m.Positions {
		best := math.Inf(1)
		var k1, k2 float64
		for _, face := range shape.Faces {
			u, v, dist := face.Surface.UV(p)
			if dist < best {
				best = dist
				k1, k2 = face.Surface.Curvatures(u, v)
			}
		}
		if best > maxDist {
			field.Unstable[i] = true
			continue
		}
		if kind == FieldMeanCurvature {
			field.PerVertex[i] = (k1 + k2) / 2
		} else {
			field.PerVertex[i] = k1 * k2
		}
	}
	field.rescan()
	return field
}

// GaussianCurvature estimates per-vertex Gaussian curvature from the
// angle deficit around each vertex, normalized by a third of the
// incident triangle area. Vertices on mesh boundaries carry no full
// angle sum and are flagged unstable, as are vertices with vanishing
// incident area.
func GaussianCurvature(m *mesh.Mesh) Field {
	n := m.VertexCount()
	deficit := make([]float64, n)
	area := make([]float64, n)
	for i := range deficit {
		deficit[i] = 2 * math.Pi
	}

	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		angles := tri.Angles()
		a := tri.Area()
		f := m.Faces[i]
		for k := 0; k < 3; k++ {
			deficit[f[k]] -= angles[k]
			area[f[k]] += a / 3
		}
	}

	field := Field{Kind: FieldGaussianCurvature, PerVertex: make([]float64, n), Unstable: make([]bool, n)}
	boundary := m.BoundaryVertices()
	for i := 0; i < n; i++ {
		if boundary[i] || area[i] < 1e-12 {
			field.Unstable[i] = true
			continue
		}
		field.PerVertex[i] = deficit[i] / area[i]
	}
	field.rescan()
	return field
}

// MeanCurvature estimates per-vertex mean curvature from the cotangent
// Laplacian: half the length of the discrete Laplace vector, signed by
// its direction against the vertex normal. Boundary vertices are
// flagged unstable.
func MeanCurvature(m *mesh.Mesh) Field {
	n := m.VertexCount()
	laplace := make([]geometry.Vector3, n)
	area := make([]float64, n)

	for i := 0; i < m.FaceCount(); i++ {
		f := m.Faces[i]
		tri := m.Triangle(i)
		a := tri.Area()
		v := [3]geometry.Vector3{tri.V1, tri.V2, tri.V3}

		for k := 0; k < 3; k++ {
			// The angle at vertex k faces the edge (k+1, k+2); its
			// cotangent weights that edge in the Laplacian
			opp1 := (k + 1) % 3
			e1 := v[(k+2)%3].Sub(v[k])
			e2 := v[opp1].Sub(v[k])
			cross := e1.Cross(e2).Length()
			if cross < 1e-15 {
				continue
			}
			cot := e1.Dot(e2) / cross

			edge := v[(k+2)%3].Sub(v[opp1])
			laplace[f[opp1]] = laplace[f[opp1]].Add(edge.Mul(cot))
			laplace[f[(k+2)%3]] = laplace[f[(k+2)%3]].Sub(edge.Mul(cot))

			area[f[k]] += a / 3
		}
	}

	normals := NormalField(m)

	field := Field{Kind: FieldMeanCurvature, PerVertex: make([]float64, n), Unstable: make([]bool, n)}
	boundary := m.BoundaryVertices()
	for i := 0; i < n; i++ {
		if boundary[i] || area[i] < 1e-12 {
			field.Unstable[i] = true
			continue
		}
		lv := laplace[i].Mul(1 / (4 * area[i]))
		h := lv.Length()
		// Laplace vector opposing the normal means concave
		if lv.Dot(normals[i]) > 0 {
			h = -h
		}
		field.PerVertex[i] = h
	}
	field.rescan()
	return field
}
