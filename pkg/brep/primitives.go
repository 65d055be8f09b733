package brep

import (
	"fmt"
	"math"

	"github.com/polarbearcad/polarbear/pkg/geometry"
)

// MakeBox builds an exact axis-aligned box between two corners
func MakeBox(min, max geometry.Vector3) (*Shape, error) {
	size := max.Sub(min)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("box corners must span a positive extent: %w", ErrGeometry)
	}

	shape := &Shape{
		area:   2 * (size.X*size.Y + size.Y*size.Z + size.X*size.Z),
		volume: size.X * size.Y * size.Z,
		bounds: geometry.NewBoundingBoxFromCorners(min, max),
	}

	// One planar face per side, with the parameter rectangle matching
	// the side extents. Plane u runs along XDir and v along YDir as
	// chosen by frame(), so faces are anchored at the side center.
	sides := []struct {
		center geometry.Vector3
		normal geometry.Vector3
		du, dv float64
	}{
		{geometry.Vector3{X: min.X + size.X/2, Y: min.Y + size.Y/2, Z: min.Z}, geometry.Vector3{Z: -1}, size.Y, size.X},
		{geometry.Vector3{X: min.X + size.X/2, Y: min.Y + size.Y/2, Z: max.Z}, geometry.Vector3{Z: 1}, size.Y, size.X},
		{geometry.Vector3{X: min.X + size.X/2, Y: min.Y, Z: min.Z + size.Z/2}, geometry.Vector3{Y: -1}, size.Z, size.X},
		{geometry.Vector3{X: min.X + size.X/2, Y: max.Y, Z: min.Z + size.Z/2}, geometry.Vector3{Y: 1}, size.Z, size.X},
		{geometry.Vector3{X: min.X, Y: min.Y + size.Y/2, Z: min.Z + size.Z/2}, geometry.Vector3{X: -1}, size.Z, size.Y},
		{geometry.Vector3{X: max.X, Y: min.Y + size.Y/2, Z: min.Z + size.Z/2}, geometry.Vector3{X: 1}, size.Z, size.Y},
	}
	for _, side := range sides {
		surf := NewPlaneSurface(side.center, side.normal)
		shape.Faces = append(shape.Faces, Face{
			Surface: surf,
			U0:      -side.du / 2, U1: side.du / 2,
			V0: -side.dv / 2, V1: side.dv / 2,
		})
	}
	return shape, nil
}

// MakeCylinder builds an exact solid cylinder from the base center up
// along the axis
func MakeCylinder(center, axis geometry.Vector3, radius, height float64) (*Shape, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("cylinder requires positive radius and height: %w", ErrGeometry)
	}
	if axis.Length() == 0 {
		return nil, fmt.Errorf("cylinder axis must be non-zero: %w", ErrGeometry)
	}
	a := axis.Normalize()
	top := center.Add(a.Mul(height))

	shape := &Shape{
		area:   2*math.Pi*radius*height + 2*math.Pi*radius*radius,
		volume: math.Pi * radius * radius * height,
		bounds: circleSweptBounds(center, top, a, radius),
	}
	shape.Faces = []Face{
		{
			Surface: NewCylinderSurface(center, a, radius, height),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: height,
			ClosedU: true,
		},
		{
			Surface: NewDiskSurface(center, a.Mul(-1), radius),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: radius,
			ClosedU: true,
		},
		{
			Surface: NewDiskSurface(top, a, radius),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: radius,
			ClosedU: true,
		},
	}
	return shape, nil
}

// MakeSphere builds an exact sphere
func MakeSphere(center geometry.Vector3, radius float64) (*Shape, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere requires a positive radius: %w", ErrGeometry)
	}
	r := geometry.Vector3{X: radius, Y: radius, Z: radius}
	return &Shape{
		area:   4 * math.Pi * radius * radius,
		volume: 4.0 / 3.0 * math.Pi * radius * radius * radius,
		bounds: geometry.NewBoundingBoxFromCorners(center.Sub(r), center.Add(r)),
		Faces: []Face{{
			Surface: SphereSurface{Center: center, Radius: radius},
			U0:      0, U1: 2 * math.Pi,
			V0: -math.Pi / 2, V1: math.Pi / 2,
			ClosedU: true,
		}},
	}, nil
}

// MakeCone builds an exact cone or frustum from the base center up
// along the axis. A topRadius of 0 gives a full cone.
func MakeCone(center, axis geometry.Vector3, baseRadius, topRadius, height float64) (*Shape, error) {
	if baseRadius <= 0 || topRadius < 0 || height <= 0 {
		return nil, fmt.Errorf("cone requires positive base radius and height: %w", ErrGeometry)
	}
	if axis.Length() == 0 {
		return nil, fmt.Errorf("cone axis must be non-zero: %w", ErrGeometry)
	}
	a := axis.Normalize()
	top := center.Add(a.Mul(height))
	slant := math.Sqrt(height*height + (baseRadius-topRadius)*(baseRadius-topRadius))

	shape := &Shape{
		area: math.Pi*(baseRadius+topRadius)*slant +
			math.Pi*baseRadius*baseRadius +
			math.Pi*topRadius*topRadius,
		volume: math.Pi / 3 * height *
			(baseRadius*baseRadius + baseRadius*topRadius + topRadius*topRadius),
		bounds: circleSweptBounds(center, top, a, baseRadius),
	}
	shape.Faces = []Face{
		{
			Surface: NewConeSurface(center, a, baseRadius, topRadius, height),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: 1,
			ClosedU: true,
		},
		{
			Surface: NewDiskSurface(center, a.Mul(-1), baseRadius),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: baseRadius,
			ClosedU: true,
		},
	}
	if topRadius > 0 {
		shape.Faces = append(shape.Faces, Face{
			Surface: NewDiskSurface(top, a, topRadius),
			U0:      0, U1: 2 * math.Pi, V0: 0, V1: topRadius,
			ClosedU: true,
		})
	}
	return shape, nil
}

// circleSweptBounds returns the exact bounds of the volume swept by a
// circle of the given radius moving from base to top along axis
func circleSweptBounds(base, top, axis geometry.Vector3, radius float64) geometry.BoundingBox {
	// Per-component extent of a circle perpendicular to a unit axis
	ext := geometry.Vector3{
		X: radius * math.Sqrt(math.Max(0, 1-axis.X*axis.X)),
		Y: radius * math.Sqrt(math.Max(0, 1-axis.Y*axis.Y)),
		Z: radius * math.Sqrt(math.Max(0, 1-axis.Z*axis.Z)),
	}
	bbox := geometry.NewBoundingBox()
	bbox.Extend(base.Sub(ext))
	bbox.Extend(base.Add(ext))
	bbox.Extend(top.Sub(ext))
	bbox.Extend(top.Add(ext))
	return bbox
}
