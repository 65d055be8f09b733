package meshedit

import (
	"fmt"
	"math"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Subdividing quadruples the face count per level; levels beyond this
// explode memory for no visual gain
const maxSubdivisionLevels = 6

// Subdivide splits every triangle into four per level. With smooth set
// the new and old vertices are repositioned with Loop weights, pulling
// the surface toward a smooth limit; otherwise the geometry is
// unchanged and only the resolution increases.
func Subdivide(m *mesh.Mesh, levels int, smooth bool) (*mesh.Mesh, error) {
	if levels < 1 || levels > maxSubdivisionLevels {
		return nil, fmt.Errorf("subdivision levels must be in 1..%d, got %d: %w",
			maxSubdivisionLevels, levels, brep.ErrGeometry)
	}

	out := m.Clone()
	out.Normals = nil
	for i := 0; i < levels; i++ {
		out = subdivideOnce(out, smooth)
	}
	out.ComputeNormals()
	return out, nil
}

type edge struct{ a, b int }

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// edgeInfo gathers, per undirected edge, the vertices opposite it in
// its adjacent faces
type edgeInfo struct {
	opposite []int
}

func subdivideOnce(m *mesh.Mesh, smooth bool) *mesh.Mesh {
	edges := make(map[edge]*edgeInfo)
	neighbors := make(map[int]map[int]bool)
	addNeighbor := func(a, b int) {
		if neighbors[a] == nil {
			neighbors[a] = make(map[int]bool)
		}
		neighbors[a][b] = true
	}

	for _, f := range m.Faces {
		for e := 0; e < 3; e++ {
			a, b := f[e], f[(e+1)%3]
			key := makeEdge(a, b)
			if edges[key] == nil {
				edges[key] = &edgeInfo{}
			}
			edges[key].opposite = append(edges[key].opposite, f[(e+2)%3])
			addNeighbor(a, b)
			addNeighbor(b, a)
		}
	}

	boundaryVertex := make(map[int][]int)
	for key, info := range edges {
		if len(info.opposite) == 1 {
			boundaryVertex[key.a] = append(boundaryVertex[key.a], key.b)
			boundaryVertex[key.b] = append(boundaryVertex[key.b], key.a)
		}
	}

	out := mesh.New()

	// Even vertices: original positions, smoothed with Loop weights
	// when requested
	out.Positions = make([]geometry.Vector3, len(m.Positions), len(m.Positions)+len(edges))
	for i, p := range m.Positions {
		if !smooth {
			out.Positions[i] = p
			continue
		}
		if onBoundary, ok := boundaryVertex[i]; ok {
			// Boundary rule: weight the two boundary neighbors
			smoothed := p.Mul(3.0 / 4.0)
			for _, nb := range onBoundary[:min(2, len(onBoundary))] {
				smoothed = smoothed.Add(m.Positions[nb].Mul(1.0 / 8.0))
			}
			out.Positions[i] = smoothed
			continue
		}
		nbs := neighbors[i]
		n := float64(len(nbs))
		if n < 3 {
			out.Positions[i] = p
			continue
		}
		c := 3.0/8.0 + math.Cos(2*math.Pi/n)/4.0
		beta := (5.0/8.0 - c*c) / n
		smoothed := p.Mul(1 - n*beta)
		for nb := range nbs {
			smoothed = smoothed.Add(m.Positions[nb].Mul(beta))
		}
		out.Positions[i] = smoothed
	}

	// Odd vertices: one midpoint per edge
	midpoint := make(map[edge]int, len(edges))
	for key, info := range edges {
		a, b := m.Positions[key.a], m.Positions[key.b]
		var p geometry.Vector3
		if smooth && len(info.opposite) == 2 {
			c := m.Positions[info.opposite[0]]
			d := m.Positions[info.opposite[1]]
			p = a.Add(b).Mul(3.0 / 8.0).Add(c.Add(d).Mul(1.0 / 8.0))
		} else {
			p = a.Lerp(b, 0.5)
		}
		midpoint[key] = len(out.Positions)
		out.Positions = append(out.Positions, p)
	}

	out.Faces = make([][3]int, 0, 4*len(m.Faces))
	for _, f := range m.Faces {
		m01 := midpoint[makeEdge(f[0], f[1])]
		m12 := midpoint[makeEdge(f[1], f[2])]
		m20 := midpoint[makeEdge(f[2], f[0])]
		out.Faces = append(out.Faces,
			[3]int{f[0], m01, m20},
			[3]int{f[1], m12, m01},
			[3]int{f[2], m20, m12},
			[3]int{m01, m12, m20},
		)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
