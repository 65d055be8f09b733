package brep

import (
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Kind distinguishes models that carry exact geometry from models
// that only exist as a mesh
type Kind int

const (
	// Exact models carry analytic surfaces and can be re-tessellated
	// at any tolerance
	Exact Kind = iota

	// MeshOnly models carry imported triangles with no exact
	// counterpart; tessellation is the identity
	MeshOnly
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case MeshOnly:
		return "mesh-only"
	}
	return "unknown"
}

// Handle is the geometry side of a loaded model: either an exact
// shape or the source mesh of a mesh-only import, plus the metadata
// that travels with it.
type Handle struct {
	Kind   Kind
	Shape  *Shape     // set when Kind is Exact
	Source *mesh.Mesh // set when Kind is MeshOnly
	Name   string
	Units  string
}

// NewExactHandle wraps an analytic shape
func NewExactHandle(name string, shape *Shape) *Handle {
	return &Handle{Kind: Exact, Shape: shape, Name: name, Units: "mm"}
}

// NewMeshHandle wraps an imported mesh with no exact geometry
func NewMeshHandle(name string, m *mesh.Mesh) *Handle {
	return &Handle{Kind: MeshOnly, Source: m, Name: name, Units: "mm"}
}

// BoundingBox returns the bounds of whichever representation the
// handle carries
func (h *Handle) BoundingBox() geometry.BoundingBox {
	if h.Kind == Exact {
		return h.Shape.BoundingBox()
	}
	return h.Source.BoundingBox()
}
