package geometry

import (
	"fmt"
	"math"
)

// CircleFit represents the result of fitting a circle to points
type CircleFit struct {
	Center Vector3 // Circle center in 3D
	Radius float64 // Circle radius
	Normal Vector3 // Normal vector of the plane containing the circle
	StdDev float64 // Standard deviation of fit (quality measure)
}

// FitCircleToPoints fits a circle to a set of 3D points lying (at
// least approximately) in the given plane. Points are projected into
// the plane's 2D frame before fitting.
//
// Uses the 3-point determinant formula for calculating a circle through 3 points:
//
//	D = 2(x₁(y₂-y₃) + x₂(y₃-y₁) + x₃(y₁-y₂))
//	cx = ((x₁²+y₁²)(y₂-y₃) + (x₂²+y₂²)(y₃-y₁) + (x₃²+y₃²)(y₁-y₂)) / D
//	cy = ((x₁²+y₁²)(x₃-x₂) + (x₂²+y₂²)(x₁-x₃) + (x₃²+y₃²)(x₂-x₁)) / D
func FitCircleToPoints(points []Vector3, plane Plane) (*CircleFit, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("need at least 3 points to fit a circle")
	}

	// Project points into the plane's 2D frame
	u, v := plane.Basis()
	points2D := make([][2]float64, len(points))
	for i, p := range points {
		d := p.Sub(plane.Origin)
		points2D[i] = [2]float64{d.Dot(u), d.Dot(v)}
	}

	// Use first, middle, and last points to get good coverage of the arc
	p1 := points2D[0]
	p2 := points2D[len(points2D)/2]
	p3 := points2D[len(points2D)-1]

	x1, y1 := p1[0], p1[1]
	x2, y2 := p2[0], p2[1]
	x3, y3 := p3[0], p3[1]

	D := 2.0 * (x1*(y2-y3) + x2*(y3-y1) + x3*(y1-y2))
	if math.Abs(D) < 1e-10 {
		return nil, fmt.Errorf("points are collinear")
	}

	x1sq := x1*x1 + y1*y1
	x2sq := x2*x2 + y2*y2
	x3sq := x3*x3 + y3*y3

	cx2d := (x1sq*(y2-y3) + x2sq*(y3-y1) + x3sq*(y1-y2)) / D
	cy2d := (x1sq*(x3-x2) + x2sq*(x1-x3) + x3sq*(x2-x1)) / D

	dx := x1 - cx2d
	dy := y1 - cy2d
	radius := math.Sqrt(dx*dx + dy*dy)

	// Transform center back to 3D
	center := plane.Origin.Add(u.Mul(cx2d)).Add(v.Mul(cy2d))

	// Fit quality: standard deviation of the radial error over all points
	n := float64(len(points2D))
	var sumError float64
	for _, p := range points2D {
		dx := p[0] - cx2d
		dy := p[1] - cy2d
		dist := math.Sqrt(dx*dx + dy*dy)
		sumError += (dist - radius) * (dist - radius)
	}
	stdDev := math.Sqrt(sumError / n)

	return &CircleFit{
		Center: center,
		Radius: radius,
		Normal: plane.Normal,
		StdDev: stdDev,
	}, nil
}
