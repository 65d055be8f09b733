// Package meshedit implements the editing operations that produce new
// meshes from existing ones: box cropping, simplification and
// subdivision. Editing always works on the tessellated representation;
// models that were exact before an edit carry on as mesh-only.
package meshedit

import (
	"fmt"
	"math"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Crop clips the mesh to an axis-aligned box. Closed meshes get their
// cut openings capped so the result encloses a volume again; open
// meshes are clipped as-is. A box that misses the mesh entirely is an
// error.
func Crop(m *mesh.Mesh, box geometry.BoundingBox) (*mesh.Mesh, error) {
	if box.IsEmpty() || box.Volume() <= 0 {
		return nil, fmt.Errorf("crop box has no volume: %w", brep.ErrGeometry)
	}
	if !box.Intersects(m.BoundingBox()) {
		return nil, fmt.Errorf("crop box does not touch the model: %w", brep.ErrGeometry)
	}

	wasClosed := m.IsClosed()
	weld := m.BoundingBox().Diagonal()*1e-9 + 1e-12

	// Plane indices: 0=X min, 1=X max, 2=Y min, 3=Y max, 4=Z min, 5=Z max
	planePos := func(index int) float64 {
		axis := index / 2
		if index%2 == 0 {
			return box.Min.Component(axis)
		}
		return box.Max.Component(axis)
	}

	var kept []geometry.Triangle
	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		pending := [][3]geometry.Vector3{{tri.V1, tri.V2, tri.V3}}
		for plane := 0; plane < 6 && len(pending) > 0; plane++ {
			var next [][3]geometry.Vector3
			for _, c := range pending {
				next = append(next, clipAgainstPlane(c, plane/2, planePos(plane), plane%2 == 0)...)
			}
			pending = next
		}
		for _, c := range pending {
			out := geometry.Triangle{V1: c[0], V2: c[1], V3: c[2]}
			if out.IsDegenerate(weld) {
				continue
			}
			out.Normal = out.CalculateNormal()
			kept = append(kept, out)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("crop box does not touch the model: %w", brep.ErrGeometry)
	}

	clippedMesh := mesh.FromTriangles(kept)

	// A closed input only has open edges where the crop planes cut it;
	// cap the loops on each plane so the result encloses a volume again
	if wasClosed {
		caps := capBoundaries(clippedMesh, planePos, weld)
		if len(caps) > 0 {
			kept = append(kept, caps...)
			clippedMesh = mesh.FromTriangles(kept)
		}
	}

	clippedMesh.ComputeNormals()
	return clippedMesh, nil
}

// clipAgainstPlane clips one triangle against a single axis-aligned
// plane, keeping the greater or lesser side
func clipAgainstPlane(tri [3]geometry.Vector3, axis int, pos float64, keepGreater bool) [][3]geometry.Vector3 {
	var inside [3]bool
	insideCount := 0
	for i, v := range tri {
		c := v.Component(axis)
		if keepGreater {
			inside[i] = c >= pos
		} else {
			inside[i] = c <= pos
		}
		if inside[i] {
			insideCount++
		}
	}

	switch insideCount {
	case 3:
		return [][3]geometry.Vector3{tri}
	case 0:
		return nil
	}

	intersect := func(a, b geometry.Vector3) geometry.Vector3 {
		t := (pos - a.Component(axis)) / (b.Component(axis) - a.Component(axis))
		return a.Lerp(b, t)
	}

	if insideCount == 1 {
		var keep int
		for i := range inside {
			if inside[i] {
				keep = i
				break
			}
		}
		v0 := tri[keep]
		n1 := intersect(v0, tri[(keep+1)%3])
		n2 := intersect(v0, tri[(keep+2)%3])
		return [][3]geometry.Vector3{{v0, n1, n2}}
	}

	// Two vertices inside: the clipped quad splits into two triangles
	var drop int
	for i := range inside {
		if !inside[i] {
			drop = i
			break
		}
	}
	v0 := tri[drop]
	v1 := tri[(drop+1)%3]
	v2 := tri[(drop+2)%3]
	n1 := intersect(v0, v1)
	n2 := intersect(v0, v2)

	return [][3]geometry.Vector3{
		{v1, v2, n1},
		{v2, n2, n1},
	}
}

// capBoundaries groups the open edges of the clipped mesh by the crop
// plane they lie on and fills each loop with triangles wound to face
// out of the kept solid
func capBoundaries(m *mesh.Mesh, planePos func(int) float64, weld float64) []geometry.Triangle {
	onPlane := func(v geometry.Vector3, plane int) bool {
		return math.Abs(v.Component(plane/2)-planePos(plane)) <= weld
	}

	edgesByPlane := make(map[int][]geometry.Segment)
	for _, e := range m.BoundaryEdges() {
		a, b := m.Positions[e[0]], m.Positions[e[1]]
		// Corner edges lie on two planes; offer them to both, the
		// plane whose loop closes wins and the other stays open
		for plane := 0; plane < 6; plane++ {
			if onPlane(a, plane) && onPlane(b, plane) {
				edgesByPlane[plane] = append(edgesByPlane[plane], geometry.Segment{A: a, B: b})
			}
		}
	}

	var caps []geometry.Triangle
	for plane, edges := range edgesByPlane {
		outward := capOutward(plane)
		for _, loop := range geometry.OrderSegmentsIntoLoops(edges, weld) {
			if !loop.Closed || len(loop.Points) < 3 {
				continue
			}
			for _, tri := range geometry.TriangulatePolygon(loop.Points) {
				if tri.IsDegenerate(weld) {
					continue
				}
				if tri.Normal.Dot(outward) < 0 {
					tri.V2, tri.V3 = tri.V3, tri.V2
					tri.Normal = tri.Normal.Mul(-1)
				}
				caps = append(caps, tri)
			}
		}
	}
	return caps
}

// capOutward is the outward direction of the kept solid at a crop
// plane: minus the axis on min planes, plus the axis on max planes
func capOutward(plane int) geometry.Vector3 {
	sign := 1.0
	if plane%2 == 0 {
		sign = -1
	}
	switch plane / 2 {
	case 0:
		return geometry.Vector3{X: sign}
	case 1:
		return geometry.Vector3{Y: sign}
	default:
		return geometry.Vector3{Z: sign}
	}
}
