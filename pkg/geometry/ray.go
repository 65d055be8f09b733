package geometry

import "math"

// Ray represents a half-line used for picking
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay creates a ray with a normalized direction
func NewRay(origin, direction Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vector3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectTriangle computes the ray/triangle intersection using the
// Moeller-Trumbore algorithm. Returns the hit point, the ray parameter
// and whether a forward-facing hit exists.
func (r Ray) IntersectTriangle(tri Triangle) (Vector3, float64, bool) {
	const eps = 1e-12

	edge1 := tri.V2.Sub(tri.V1)
	edge2 := tri.V3.Sub(tri.V1)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < eps {
		return Vector3{}, 0, false // Ray parallel to triangle
	}

	f := 1.0 / a
	s := r.Origin.Sub(tri.V1)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Vector3{}, 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Vector3{}, 0, false
	}

	t := f * edge2.Dot(q)
	if t < eps {
		return Vector3{}, 0, false // Behind the origin
	}

	return r.At(t), t, true
}

// ClosestPointTo returns the point on the ray closest to p
func (r Ray) ClosestPointTo(p Vector3) Vector3 {
	t := p.Sub(r.Origin).Dot(r.Direction)
	if t < 0 {
		t = 0
	}
	return r.At(t)
}
