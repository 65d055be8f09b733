package geometry

import "math"

// TriangulatePolygon triangulates a simple planar polygon by ear
// clipping. The polygon is projected to 2D by dropping the dominant
// component of its normal. Falls back to a fan when no ear is found,
// which only happens for degenerate input.
func TriangulatePolygon(points []Vector3) []Triangle {
	if len(points) < 3 {
		return nil
	}
	if len(points) == 3 {
		return []Triangle{makeTri(points[0], points[1], points[2])}
	}

	project := projector(points)

	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}

	// A clockwise projection flips every cross product; detect the
	// orientation from the signed area and compensate
	ccw := signedArea2D(points, project) > 0

	var triangles []Triangle
	for len(indices) > 3 {
		earFound := false
		for i := 0; i < len(indices); i++ {
			if !isEar(points, indices, i, project, ccw) {
				continue
			}
			prev := indices[(i-1+len(indices))%len(indices)]
			curr := indices[i]
			next := indices[(i+1)%len(indices)]
			triangles = append(triangles, makeTri(points[prev], points[curr], points[next]))
			indices = append(indices[:i], indices[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			for i := 1; i < len(indices)-1; i++ {
				triangles = append(triangles, makeTri(
					points[indices[0]], points[indices[i]], points[indices[i+1]]))
			}
			return triangles
		}
	}
	triangles = append(triangles, makeTri(
		points[indices[0]], points[indices[1]], points[indices[2]]))
	return triangles
}

func makeTri(a, b, c Vector3) Triangle {
	t := Triangle{V1: a, V2: b, V3: c}
	t.Normal = t.CalculateNormal()
	return t
}

// projector picks the 2D projection that drops the dominant normal
// component of the polygon
func projector(points []Vector3) func(Vector3) (float64, float64) {
	var normal Vector3
	for i := 2; i < len(points); i++ {
		e1 := points[i-1].Sub(points[0])
		e2 := points[i].Sub(points[0])
		normal = normal.Add(e1.Cross(e2))
	}

	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	switch {
	case ax >= ay && ax >= az:
		return func(v Vector3) (float64, float64) { return v.Y, v.Z }
	case ay >= ax && ay >= az:
		return func(v Vector3) (float64, float64) { return v.X, v.Z }
	default:
		return func(v Vector3) (float64, float64) { return v.X, v.Y }
	}
}

func signedArea2D(points []Vector3, project func(Vector3) (float64, float64)) float64 {
	area := 0.0
	for i := range points {
		x1, y1 := project(points[i])
		x2, y2 := project(points[(i+1)%len(points)])
		area += x1*y2 - x2*y1
	}
	return area / 2
}

func isEar(points []Vector3, indices []int, earIndex int, project func(Vector3) (float64, float64), ccw bool) bool {
	n := len(indices)
	prev := indices[(earIndex-1+n)%n]
	curr := indices[earIndex]
	next := indices[(earIndex+1)%n]

	ax, ay := project(points[prev])
	bx, by := project(points[curr])
	cx, cy := project(points[next])

	cross := (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
	if !ccw {
		cross = -cross
	}
	if cross <= 0 {
		return false
	}

	for i := 0; i < n; i++ {
		idx := indices[i]
		if idx == prev || idx == curr || idx == next {
			continue
		}
		px, py := project(points[idx])
		if pointInTriangle2D(px, py, ax, ay, bx, by, cx, cy) {
			return false
		}
	}
	return true
}

func pointInTriangle2D(px, py, ax, ay, bx, by, cx, cy float64) bool {
	sign := func(p1x, p1y, p2x, p2y, p3x, p3y float64) float64 {
		return (p1x-p3x)*(p2y-p3y) - (p2x-p3x)*(p1y-p3y)
	}

	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0

	return !(hasNeg && hasPos)
}
