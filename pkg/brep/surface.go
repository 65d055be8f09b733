package brep

import (
	"math"

	"github.com/polarbearcad/polarbear/pkg/geometry"
)

// Surface is an exact parametric surface. Points, normals and
// principal curvatures are evaluated analytically, never from a mesh.
type Surface interface {
	// Point evaluates the surface at parameter (u, v)
	Point(u, v float64) geometry.Vector3

	// Normal returns the unit surface normal at (u, v)
	Normal(u, v float64) geometry.Vector3

	// Curvatures returns the principal curvatures at (u, v),
	// with |k1| >= |k2|
	Curvatures(u, v float64) (k1, k2 float64)

	// UV inverts a nearby point to surface parameters, returning the
	// distance from the point to the surface
	UV(p geometry.Vector3) (u, v, dist float64)
}

const poleEps = 1e-12

// wrapAngle maps an atan2 result into [0, 2π)
func wrapAngle(a float64) float64 {
	if a < 0 {
		return a + 2*math.Pi
	}
	return a
}

// frame builds unit directions perpendicular to axis
func frame(axis geometry.Vector3) (x, y geometry.Vector3) {
	ref := geometry.Vector3{X: 1}
	if math.Abs(axis.X) > 0.9 {
		ref = geometry.Vector3{Y: 1}
	}
	x = axis.Cross(ref).Normalize()
	y = axis.Cross(x)
	return x, y
}

// PlaneSurface is a flat surface with cartesian parameters along two
// orthogonal unit directions
type PlaneSurface struct {
	Origin geometry.Vector3
	XDir   geometry.Vector3
	YDir   geometry.Vector3
}

// NewPlaneSurface builds a plane from an origin and unit normal
func NewPlaneSurface(origin, normal geometry.Vector3) PlaneSurface {
	x, y := frame(normal.Normalize())
	return PlaneSurface{Origin: origin, XDir: x, YDir: y}
}

func (s PlaneSurface) Point(u, v float64) geometry.Vector3 {
	return s.Origin.Add(s.XDir.Mul(u)).Add(s.YDir.Mul(v))
}

func (s PlaneSurface) Normal(u, v float64) geometry.Vector3 {
	return s.XDir.Cross(s.YDir)
}

func (s PlaneSurface) Curvatures(u, v float64) (float64, float64) {
	return 0, 0
}

func (s PlaneSurface) UV(p geometry.Vector3) (float64, float64, float64) {
	d := p.Sub(s.Origin)
	return d.Dot(s.XDir), d.Dot(s.YDir), math.Abs(d.Dot(s.XDir.Cross(s.YDir)))
}

// DiskSurface is a flat circular face. u is the angle in [0, 2π) and
// v the radius in [0, Radius]; v = 0 collapses to the center.
type DiskSurface struct {
	Center geometry.Vector3
	Radius float64
	axis   geometry.Vector3
	xdir   geometry.Vector3
	ydir   geometry.Vector3
}

// NewDiskSurface builds a disk around center facing the unit normal
func NewDiskSurface(center geometry.Vector3, normal geometry.Vector3, radius float64) DiskSurface {
	n := normal.Normalize()
	x, y := frame(n)
	return DiskSurface{Center: center, Radius: radius, axis: n, xdir: x, ydir: y}
}

func (s DiskSurface) Point(u, v float64) geometry.Vector3 {
	if v <= poleEps {
		return s.Center
	}
	return s.Center.
		Add(s.xdir.Mul(v * math.Cos(u))).
		Add(s.ydir.Mul(v * math.Sin(u)))
}

func (s DiskSurface) Normal(u, v float64) geometry.Vector3 {
	return s.axis
}

func (s DiskSurface) Curvatures(u, v float64) (float64, float64) {
	return 0, 0
}

func (s DiskSurface) UV(p geometry.Vector3) (float64, float64, float64) {
	d := p.Sub(s.Center)
	off := d.Dot(s.axis)
	planar := d.Sub(s.axis.Mul(off))
	v := planar.Length()
	u := 0.0
	if v > poleEps {
		u = wrapAngle(math.Atan2(planar.Dot(s.ydir), planar.Dot(s.xdir)))
	}
	overhang := math.Max(0, v-s.Radius)
	return u, math.Min(v, s.Radius), math.Hypot(off, overhang)
}

// CylinderSurface is the lateral surface of a cylinder. u is the
// angle in [0, 2π) and v the distance along the axis in [0, Height].
type CylinderSurface struct {
	Center geometry.Vector3 // base circle center
	Axis   geometry.Vector3 // unit
	Radius float64
	Height float64
	xdir   geometry.Vector3
	ydir   geometry.Vector3
}

// NewCylinderSurface builds a cylinder wall from the base center up
// along the unit axis
func NewCylinderSurface(center, axis geometry.Vector3, radius, height float64) CylinderSurface {
	a := axis.Normalize()
	x, y := frame(a)
	return CylinderSurface{Center: center, Axis: a, Radius: radius, Height: height, xdir: x, ydir: y}
}

func (s CylinderSurface) radial(u float64) geometry.Vector3 {
	return s.xdir.Mul(math.Cos(u)).Add(s.ydir.Mul(math.Sin(u)))
}

func (s CylinderSurface) Point(u, v float64) geometry.Vector3 {
	return s.Center.Add(s.radial(u).Mul(s.Radius)).Add(s.Axis.Mul(v))
}

func (s CylinderSurface) Normal(u, v float64) geometry.Vector3 {
	return s.radial(u)
}

func (s CylinderSurface) Curvatures(u, v float64) (float64, float64) {
	return 1 / s.Radius, 0
}

func (s CylinderSurface) UV(p geometry.Vector3) (float64, float64, float64) {
	d := p.Sub(s.Center)
	h := d.Dot(s.Axis)
	planar := d.Sub(s.Axis.Mul(h))
	u := 0.0
	if planar.Length() > poleEps {
		u = wrapAngle(math.Atan2(planar.Dot(s.ydir), planar.Dot(s.xdir)))
	}
	v := math.Max(0, math.Min(s.Height, h))
	return u, v, math.Hypot(planar.Length()-s.Radius, h-v)
}

// SphereSurface is a full sphere. u is the azimuth in [0, 2π) and v
// the latitude in [-π/2, π/2]; the poles collapse to single points.
type SphereSurface struct {
	Center geometry.Vector3
	Radius float64
}

func (s SphereSurface) Point(u, v float64) geometry.Vector3 {
	if v >= math.Pi/2-poleEps {
		return s.Center.Add(geometry.Vector3{Z: s.Radius})
	}
	if v <= -math.Pi/2+poleEps {
		return s.Center.Add(geometry.Vector3{Z: -s.Radius})
	}
	cv := math.Cos(v)
	return s.Center.Add(geometry.Vector3{
		X: s.Radius * cv * math.Cos(u),
		Y: s.Radius * cv * math.Sin(u),
		Z: s.Radius * math.Sin(v),
	})
}

func (s SphereSurface) Normal(u, v float64) geometry.Vector3 {
	return s.Point(u, v).Sub(s.Center).Normalize()
}

func (s SphereSurface) Curvatures(u, v float64) (float64, float64) {
	k := 1 / s.Radius
	return k, k
}

func (s SphereSurface) UV(p geometry.Vector3) (float64, float64, float64) {
	d := p.Sub(s.Center)
	r := d.Length()
	if r <= poleEps {
		return 0, 0, s.Radius
	}
	v := math.Asin(math.Max(-1, math.Min(1, d.Z/r)))
	u := wrapAngle(math.Atan2(d.Y, d.X))
	return u, v, math.Abs(r - s.Radius)
}

// ConeSurface is the lateral surface of a cone or frustum. u is the
// angle in [0, 2π) and v the normalized height in [0, 1]; the local
// radius interpolates from BaseRadius to TopRadius. A TopRadius of 0
// collapses v = 1 to the apex.
type ConeSurface struct {
	Center     geometry.Vector3 // base circle center
	Axis       geometry.Vector3 // unit
	BaseRadius float64
	TopRadius  float64
	Height     float64
	xdir       geometry.Vector3
	ydir       geometry.Vector3
}

// NewConeSurface builds a cone wall from the base center up along the
// unit axis
func NewConeSurface(center, axis geometry.Vector3, baseRadius, topRadius, height float64) ConeSurface {
	a := axis.Normalize()
	x, y := frame(a)
	return ConeSurface{
		Center: center, Axis: a,
		BaseRadius: baseRadius, TopRadius: topRadius, Height: height,
		xdir: x, ydir: y,
	}
}

func (s ConeSurface) radiusAt(v float64) float64 {
	return s.BaseRadius + (s.TopRadius-s.BaseRadius)*v
}

func (s ConeSurface) radial(u float64) geometry.Vector3 {
	return s.xdir.Mul(math.Cos(u)).Add(s.ydir.Mul(math.Sin(u)))
}

func (s ConeSurface) Point(u, v float64) geometry.Vector3 {
	r := s.radiusAt(v)
	if r <= poleEps {
		return s.Center.Add(s.Axis.Mul(s.Height * v))
	}
	return s.Center.Add(s.radial(u).Mul(r)).Add(s.Axis.Mul(s.Height * v))
}

func (s ConeSurface) Normal(u, v float64) geometry.Vector3 {
	slope := (s.TopRadius - s.BaseRadius) / s.Height
	return s.radial(u).Sub(s.Axis.Mul(slope)).Normalize()
}

func (s ConeSurface) Curvatures(u, v float64) (float64, float64) {
	r := s.radiusAt(v)
	if r <= poleEps {
		// Curvature is unbounded at the apex; report the value one
		// step in so tessellation density stays finite
		r = s.radiusAt(v) + math.Max(s.BaseRadius, s.TopRadius)*1e-3
	}
	slope := (s.TopRadius - s.BaseRadius) / s.Height
	cosAlpha := 1 / math.Sqrt(1+slope*slope)
	return cosAlpha / r, 0
}

func (s ConeSurface) UV(p geometry.Vector3) (float64, float64, float64) {
	d := p.Sub(s.Center)
	h := d.Dot(s.Axis)
	planar := d.Sub(s.Axis.Mul(h))
	u := 0.0
	if planar.Length() > poleEps {
		u = wrapAngle(math.Atan2(planar.Dot(s.ydir), planar.Dot(s.xdir)))
	}
	v := math.Max(0, math.Min(1, h/s.Height))
	return u, v, math.Hypot(planar.Length()-s.radiusAt(v), h-v*s.Height)
}
