package geometry

import "math"

// Triangle represents a triangular facet in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{
		Normal: normal,
		V1:     v1,
		V2:     v2,
		V3:     v3,
	}
}

// CalculateNormal computes the normal vector for the triangle
func (t Triangle) CalculateNormal() Vector3 {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)
	return edge1.Cross(edge2).Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)
	cross := edge1.Cross(edge2)
	return cross.Length() / 2.0
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V3),
		t.V3.Distance(t.V1),
	}
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float64 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return Vector3{
		X: (t.V1.X + t.V2.X + t.V3.X) / 3.0,
		Y: (t.V1.Y + t.V2.Y + t.V3.Y) / 3.0,
		Z: (t.V1.Z + t.V2.Z + t.V3.Z) / 3.0,
	}
}

// Angles returns the three interior angles in radians
func (t Triangle) Angles() [3]float64 {
	e1 := t.V2.Sub(t.V1)
	e2 := t.V3.Sub(t.V2)
	e3 := t.V1.Sub(t.V3)

	// Angle at V1
	a1 := math.Acos(clamp(e1.Normalize().Dot(e3.Mul(-1).Normalize()), -1, 1))
	// Angle at V2
	a2 := math.Acos(clamp(e1.Mul(-1).Normalize().Dot(e2.Normalize()), -1, 1))
	// Angle at V3
	a3 := math.Acos(clamp(e2.Mul(-1).Normalize().Dot(e3.Normalize()), -1, 1))

	return [3]float64{a1, a2, a3}
}

// MinAngle returns the smallest interior angle in radians
func (t Triangle) MinAngle() float64 {
	angles := t.Angles()
	return math.Min(angles[0], math.Min(angles[1], angles[2]))
}

// IsDegenerate reports whether the triangle has (near) zero area or a
// (near) zero-length edge
func (t Triangle) IsDegenerate(eps float64) bool {
	lengths := t.EdgeLengths()
	for _, l := range lengths {
		if l < eps {
			return true
		}
	}
	return t.Area() < eps*eps
}

// ClosestPoint returns the point on the triangle closest to p
func (t Triangle) ClosestPoint(p Vector3) Vector3 {
	// Region classification against the triangle's barycentric coordinates
	ab := t.V2.Sub(t.V1)
	ac := t.V3.Sub(t.V1)
	ap := p.Sub(t.V1)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.V1
	}

	bp := p.Sub(t.V2)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.V2
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		w := d1 / (d1 - d3)
		return t.V1.Add(ab.Mul(w))
	}

	cp := p.Sub(t.V3)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.V3
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return t.V1.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return t.V2.Add(t.V3.Sub(t.V2).Mul(w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.V1.Add(ab.Mul(v)).Add(ac.Mul(w))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
