package meshedit

import (
	"fmt"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Simplify reduces the mesh toward targetFaces by collapsing the
// shortest edges to their midpoints. Each collapse moves surface
// points by at most half the edge length; collapses that would exceed
// maxDeviation or fold a neighboring face over are skipped. When no
// admissible collapse remains above the target the error wraps
// ErrToleranceUnreachable. The result never has more faces than the
// input.
func Simplify(m *mesh.Mesh, targetFaces int, maxDeviation float64) (*mesh.Mesh, error) {
	if targetFaces < 1 {
		return nil, fmt.Errorf("target face count must be positive, got %d: %w", targetFaces, brep.ErrGeometry)
	}
	if maxDeviation <= 0 {
		return nil, fmt.Errorf("deviation bound must be positive, got %g: %w", maxDeviation, brep.ErrGeometry)
	}

	out := m.Clone()
	out.Normals = nil
	if out.FaceCount() <= targetFaces {
		return out, nil
	}

	for out.FaceCount() > targetFaces {
		a, b, ok := shortestAdmissibleEdge(out, maxDeviation)
		if !ok {
			return nil, fmt.Errorf(
				"cannot reach %d faces within deviation %g (stuck at %d): %w",
				targetFaces, maxDeviation, out.FaceCount(), brep.ErrToleranceUnreachable)
		}
		collapseEdge(out, a, b)
	}

	compact(out)
	out.ComputeNormals()
	return out, nil
}

// shortestAdmissibleEdge scans all edges for the shortest one whose
// collapse stays within the deviation bound and does not flip any
// surviving face
func shortestAdmissibleEdge(m *mesh.Mesh, maxDeviation float64) (int, int, bool) {
	bestA, bestB := -1, -1
	bestLen := 2 * maxDeviation // collapse moves endpoints by half the length

	seen := make(map[[2]int]bool)
	for _, f := range m.Faces {
		for e := 0; e < 3; e++ {
			a, b := f[e], f[(e+1)%3]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true

			length := m.Positions[a].Distance(m.Positions[b])
			if length >= bestLen {
				continue
			}
			if collapseFlipsFace(m, a, b) {
				continue
			}
			bestA, bestB, bestLen = a, b, length
		}
	}
	return bestA, bestB, bestA >= 0
}

// collapseFlipsFace checks whether merging b into the edge midpoint
// would invert or degenerate any face that survives the collapse
func collapseFlipsFace(m *mesh.Mesh, a, b int) bool {
	mid := m.Positions[a].Lerp(m.Positions[b], 0.5)

	for _, f := range m.Faces {
		hasA := f[0] == a || f[1] == a || f[2] == a
		hasB := f[0] == b || f[1] == b || f[2] == b
		if hasA == hasB {
			// Faces with both endpoints vanish; untouched faces keep
			// their shape
			continue
		}

		var before, after geometry.Triangle
		verts := [3]geometry.Vector3{m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]}
		before = geometry.Triangle{V1: verts[0], V2: verts[1], V3: verts[2]}
		for k, vi := range f {
			if vi == a || vi == b {
				verts[k] = mid
			}
		}
		after = geometry.Triangle{V1: verts[0], V2: verts[1], V3: verts[2]}

		if after.IsDegenerate(1e-12) {
			return true
		}
		if before.CalculateNormal().Dot(after.CalculateNormal()) < 0 {
			return true
		}
	}
	return false
}

// collapseEdge merges vertex b into vertex a at the edge midpoint and
// drops the faces that used the collapsed edge
func collapseEdge(m *mesh.Mesh, a, b int) {
	m.Positions[a] = m.Positions[a].Lerp(m.Positions[b], 0.5)

	faces := m.Faces[:0]
	for _, f := range m.Faces {
		for k, vi := range f {
			if vi == b {
				f[k] = a
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		faces = append(faces, f)
	}
	m.Faces = faces
}

// compact drops vertices no face references anymore
func compact(m *mesh.Mesh) {
	remap := make([]int, len(m.Positions))
	for i := range remap {
		remap[i] = -1
	}
	var positions []geometry.Vector3
	for i, f := range m.Faces {
		for k, vi := range f {
			if remap[vi] == -1 {
				remap[vi] = len(positions)
				positions = append(positions, m.Positions[vi])
			}
			m.Faces[i][k] = remap[vi]
		}
	}
	m.Positions = positions
}
