package geometry

import (
	"fmt"
	"math"
)

// Plane represents an infinite plane defined by an origin point and a
// unit normal. The normal is normalized on construction so the signed
// distance computation stays a plain dot product.
type Plane struct {
	Origin Vector3
	Normal Vector3
}

// NewPlane creates a plane from an origin and a (not necessarily unit)
// normal vector. Returns an error for a zero normal.
func NewPlane(origin, normal Vector3) (Plane, error) {
	if normal.Length() < 1e-12 {
		return Plane{}, fmt.Errorf("plane normal must be non-zero")
	}
	return Plane{Origin: origin, Normal: normal.Normalize()}, nil
}

// AxisPlane creates an axis-aligned plane through the given point.
// axis: 0=X, 1=Y, 2=Z.
func AxisPlane(axis int, through Vector3) Plane {
	var n Vector3
	switch axis {
	case 0:
		n = NewVector3(1, 0, 0)
	case 1:
		n = NewVector3(0, 1, 0)
	default:
		n = NewVector3(0, 0, 1)
	}
	return Plane{Origin: through, Normal: n}
}

// SignedDistance returns the signed distance of p from the plane;
// positive on the normal side.
func (pl Plane) SignedDistance(p Vector3) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}

// Project returns the orthogonal projection of p onto the plane
func (pl Plane) Project(p Vector3) Vector3 {
	return p.Sub(pl.Normal.Mul(pl.SignedDistance(p)))
}

// Basis returns two orthonormal vectors spanning the plane. Together
// with the normal they form a right-handed frame.
func (pl Plane) Basis() (Vector3, Vector3) {
	// Pick the world axis least aligned with the normal as seed
	seed := NewVector3(1, 0, 0)
	if math.Abs(pl.Normal.X) > math.Abs(pl.Normal.Y) {
		seed = NewVector3(0, 1, 0)
	}
	u := pl.Normal.Cross(seed).Normalize()
	v := pl.Normal.Cross(u)
	return u, v
}
