// Package mesh provides the indexed triangle mesh that the rest of the
// system renders and analyzes. A Mesh is plain data: positions, face
// indices and optional per-vertex normals. All editing operations
// produce new meshes.
package mesh

import (
	"github.com/polarbearcad/polarbear/pkg/geometry"
)

// Mesh is an indexed triangle mesh
type Mesh struct {
	Positions []geometry.Vector3
	Normals   []geometry.Vector3 // Per-vertex, area-weighted; nil until computed
	Faces     [][3]int
}

// New creates an empty mesh
func New() *Mesh {
	return &Mesh{}
}

// FromTriangles builds an indexed mesh from a triangle soup, welding
// vertices that share exact coordinates
func FromTriangles(triangles []geometry.Triangle) *Mesh {
	m := New()
	index := make(map[geometry.Vector3]int)

	add := func(v geometry.Vector3) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(m.Positions)
		m.Positions = append(m.Positions, v)
		index[v] = i
		return i
	}

	for _, tri := range triangles {
		a := add(tri.V1)
		b := add(tri.V2)
		c := add(tri.V3)
		m.Faces = append(m.Faces, [3]int{a, b, c})
	}
	return m
}

// Triangle returns face i as a geometry.Triangle with its face normal
func (m *Mesh) Triangle(i int) geometry.Triangle {
	f := m.Faces[i]
	tri := geometry.Triangle{
		V1: m.Positions[f[0]],
		V2: m.Positions[f[1]],
		V3: m.Positions[f[2]],
	}
	tri.Normal = tri.CalculateNormal()
	return tri
}

// Triangles returns all faces as a triangle slice
func (m *Mesh) Triangles() []geometry.Triangle {
	out := make([]geometry.Triangle, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Triangle(i)
	}
	return out
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of triangles
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Clone returns a deep copy of the mesh
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Positions: make([]geometry.Vector3, len(m.Positions)),
		Faces:     make([][3]int, len(m.Faces)),
	}
	copy(out.Positions, m.Positions)
	copy(out.Faces, m.Faces)
	if m.Normals != nil {
		out.Normals = make([]geometry.Vector3, len(m.Normals))
		copy(out.Normals, m.Normals)
	}
	return out
}

// BoundingBox calculates the bounding box of the mesh
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, p := range m.Positions {
		bbox.Extend(p)
	}
	return bbox
}

// VertexNormals returns per-vertex normals as the area-weighted
// average of incident face normals, without touching the mesh. The
// winding order of the faces determines the outward direction.
func (m *Mesh) VertexNormals() []geometry.Vector3 {
	normals := make([]geometry.Vector3, len(m.Positions))
	for _, f := range m.Faces {
		a := m.Positions[f[0]]
		b := m.Positions[f[1]]
		c := m.Positions[f[2]]
		// Unnormalized cross product weights by twice the face area
		fn := b.Sub(a).Cross(c.Sub(a))
		normals[f[0]] = normals[f[0]].Add(fn)
		normals[f[1]] = normals[f[1]].Add(fn)
		normals[f[2]] = normals[f[2]].Add(fn)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// ComputeNormals fills the mesh's Normals from VertexNormals
func (m *Mesh) ComputeNormals() {
	m.Normals = m.VertexNormals()
}

// edgeKey is an undirected vertex index pair
type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// edgeUse counts how many faces reference each undirected edge
func (m *Mesh) edgeUse() map[edgeKey]int {
	use := make(map[edgeKey]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		use[newEdgeKey(f[0], f[1])]++
		use[newEdgeKey(f[1], f[2])]++
		use[newEdgeKey(f[2], f[0])]++
	}
	return use
}

// IsClosed reports whether every edge is shared by exactly two faces.
// Open shells and non-manifold meshes return false.
func (m *Mesh) IsClosed() bool {
	if len(m.Faces) == 0 {
		return false
	}
	for _, n := range m.edgeUse() {
		if n != 2 {
			return false
		}
	}
	return true
}

// BoundaryEdgeCount returns the number of edges referenced by exactly
// one face
func (m *Mesh) BoundaryEdgeCount() int {
	count := 0
	for _, n := range m.edgeUse() {
		if n == 1 {
			count++
		}
	}
	return count
}

// BoundaryEdges returns the vertex index pairs of edges referenced by
// exactly one face
func (m *Mesh) BoundaryEdges() [][2]int {
	var edges [][2]int
	for key, n := range m.edgeUse() {
		if n == 1 {
			edges = append(edges, [2]int{key.a, key.b})
		}
	}
	return edges
}

// BoundaryVertices returns the set of vertex indices lying on a
// boundary edge. Curvature estimates at these vertices are unreliable.
func (m *Mesh) BoundaryVertices() map[int]bool {
	boundary := make(map[int]bool)
	for key, n := range m.edgeUse() {
		if n == 1 {
			boundary[key.a] = true
			boundary[key.b] = true
		}
	}
	return boundary
}

// VertexFaces returns, for each vertex, the indices of its incident
// faces (the 1-ring)
func (m *Mesh) VertexFaces() [][]int {
	ring := make([][]int, len(m.Positions))
	for i, f := range m.Faces {
		ring[f[0]] = append(ring[f[0]], i)
		ring[f[1]] = append(ring[f[1]], i)
		ring[f[2]] = append(ring[f[2]], i)
	}
	return ring
}
