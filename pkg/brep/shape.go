package brep

import (
	"github.com/polarbearcad/polarbear/pkg/geometry"
)

// Face binds a surface to the parameter rectangle it occupies.
// ClosedU marks surfaces that wrap around in u, so tessellation can
// weld the seam instead of leaving a boundary.
type Face struct {
	Surface Surface
	U0, U1  float64
	V0, V1  float64
	ClosedU bool
}

// Shape is an exact solid bounded by analytic faces. Its area and
// volume come from the constructors, not from any tessellation.
type Shape struct {
	Faces  []Face
	area   float64
	volume float64
	bounds geometry.BoundingBox
}

// SurfaceArea returns the exact surface area
func (s *Shape) SurfaceArea() float64 {
	return s.area
}

// Volume returns the exact enclosed volume
func (s *Shape) Volume() float64 {
	return s.volume
}

// BoundingBox returns the exact axis-aligned bounds
func (s *Shape) BoundingBox() geometry.BoundingBox {
	return s.bounds
}
