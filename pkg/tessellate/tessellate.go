// Package tessellate converts exact shapes into triangle meshes whose
// chordal deviation from the analytic surface stays within a caller
// supplied tolerance. Tightening the tolerance never produces a
// coarser mesh.
package tessellate

import (
	"context"
	"fmt"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

const (
	minClosedDivisions = 4
	maxDivisions       = 4096
	degenerateEps      = 1e-12
)

// Precision presets expressed as chordal deviation in model units
const (
	PrecisionLow    = 0.5
	PrecisionMedium = 0.1
	PrecisionHigh   = 0.02
)

// Tessellate samples every face of the shape on a parameter grid dense
// enough that the midpoint of each grid chord deviates from the exact
// surface by at most tolerance. The context is checked between faces
// and between grid rows so long runs cancel promptly.
func Tessellate(ctx context.Context, shape *brep.Shape, tolerance float64) (*mesh.Mesh, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("tessellation tolerance must be positive, got %g: %w", tolerance, brep.ErrGeometry)
	}
	if shape == nil || len(shape.Faces) == 0 {
		return nil, fmt.Errorf("shape has no faces: %w", brep.ErrGeometry)
	}

	var triangles []geometry.Triangle
	for _, face := range shape.Faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		faceTris, err := tessellateFace(ctx, face, tolerance)
		if err != nil {
			return nil, err
		}
		triangles = append(triangles, faceTris...)
	}

	m := mesh.FromTriangles(triangles)
	m.ComputeNormals()
	return m, nil
}

func tessellateFace(ctx context.Context, face brep.Face, tolerance float64) ([]geometry.Triangle, error) {
	nu := divisions(face, tolerance, true)
	nv := divisions(face, tolerance, false)

	// Sample the grid. For a closed u direction the last column reuses
	// the first so the seam is welded rather than duplicated.
	cols := nu + 1
	if face.ClosedU {
		cols = nu
	}
	grid := make([][]geometry.Vector3, cols)
	for i := 0; i < cols; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := face.U0 + (face.U1-face.U0)*float64(i)/float64(nu)
		grid[i] = make([]geometry.Vector3, nv+1)
		for j := 0; j <= nv; j++ {
			v := face.V0 + (face.V1-face.V0)*float64(j)/float64(nv)
			grid[i][j] = face.Surface.Point(u, v)
		}
	}

	col := func(i int) []geometry.Vector3 {
		return grid[i%cols]
	}

	var triangles []geometry.Triangle
	for i := 0; i < nu; i++ {
		a, b := col(i), col(i+1)
		for j := 0; j < nv; j++ {
			// Quad (a[j], b[j], b[j+1], a[j+1]) split into two
			// triangles; pole quads drop their collapsed half
			for _, tri := range []geometry.Triangle{
				{V1: a[j], V2: b[j], V3: b[j+1]},
				{V1: a[j], V2: b[j+1], V3: a[j+1]},
			} {
				if tri.IsDegenerate(degenerateEps) {
					continue
				}
				tri.Normal = tri.CalculateNormal()
				triangles = append(triangles, tri)
			}
		}
	}
	return triangles, nil
}

// divisions doubles the grid density along one parameter direction
// until the worst chord midpoint deviation drops below the tolerance
func divisions(face brep.Face, tolerance float64, alongU bool) int {
	n := 1
	if alongU && face.ClosedU {
		n = minClosedDivisions
	}
	for n < maxDivisions {
		if maxChordDeviation(face, n, alongU) <= tolerance {
			break
		}
		n *= 2
	}
	return n
}

// maxChordDeviation samples chords at n divisions along one direction,
// crossing the other direction at its ends and midpoint, and returns
// the largest distance between a chord midpoint and the exact surface
func maxChordDeviation(face brep.Face, n int, alongU bool) float64 {
	span0, span1 := face.U0, face.U1
	cross0, cross1 := face.V0, face.V1
	if !alongU {
		span0, span1 = face.V0, face.V1
		cross0, cross1 = face.U0, face.U1
	}

	point := func(s, c float64) geometry.Vector3 {
		if alongU {
			return face.Surface.Point(s, c)
		}
		return face.Surface.Point(c, s)
	}

	worst := 0.0
	crossings := []float64{cross0, (cross0 + cross1) / 2, cross1}
	step := (span1 - span0) / float64(n)
	for _, c := range crossings {
		for i := 0; i < n; i++ {
			s0 := span0 + step*float64(i)
			s1 := s0 + step
			chordMid := point(s0, c).Lerp(point(s1, c), 0.5)
			exact := point((s0+s1)/2, c)
			if d := chordMid.Distance(exact); d > worst {
				worst = d
			}
		}
	}
	return worst
}
