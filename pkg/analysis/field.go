package analysis

import (
	"math"

	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// FieldKind names the scalar overlays a viewer can color a mesh by
type FieldKind int

const (
	FieldElevation FieldKind = iota
	FieldGaussianCurvature
	FieldMeanCurvature
	FieldQuality
)

func (k FieldKind) String() string {
	switch k {
	case FieldElevation:
		return "elevation"
	case FieldGaussianCurvature:
		return "gaussian-curvature"
	case FieldMeanCurvature:
		return "mean-curvature"
	case FieldQuality:
		return "quality"
	}
	return "unknown"
}

// Field is a scalar overlay. Per-vertex fields leave PerFace nil and
// vice versa. Unstable marks vertices whose value should not be
// trusted, typically on mesh boundaries.
type Field struct {
	Kind      FieldKind
	PerVertex []float64
	PerFace   []float64
	Unstable  []bool
	Min, Max  float64
}

// rescan recomputes Min and Max over the stable values
func (f *Field) rescan() {
	f.Min = math.Inf(1)
	f.Max = math.Inf(-1)
	scan := func(values []float64, skippable bool) {
		for i, v := range values {
			if skippable && f.Unstable != nil && f.Unstable[i] {
				continue
			}
			f.Min = math.Min(f.Min, v)
			f.Max = math.Max(f.Max, v)
		}
	}
	scan(f.PerVertex, true)
	scan(f.PerFace, false)
	if f.Min > f.Max {
		f.Min, f.Max = 0, 0
	}
}

// Elevation returns the per-vertex height along the axis, normalized
// to [0, 1] over the model extent. A flat model gets the constant 0.5.
func Elevation(m *mesh.Mesh, axis int) Field {
	field := Field{Kind: FieldElevation, PerVertex: make([]float64, m.VertexCount())}

	bounds := m.BoundingBox()
	lo := bounds.Min.Component(axis)
	extent := bounds.Max.Component(axis) - lo
	for i, p := range m.Positions {
		if extent <= 0 {
			field.PerVertex[i] = 0.5
			continue
		}
		field.PerVertex[i] = (p.Component(axis) - lo) / extent
	}
	field.rescan()
	return field
}

// Quality returns the per-face triangle quality: the smallest interior
// angle divided by 60 degrees, so equilateral triangles score 1 and
// slivers approach 0. A diagnostic overlay; no operation refuses to
// run on low-quality meshes.
func Quality(m *mesh.Mesh) Field {
	field := Field{Kind: FieldQuality, PerFace: make([]float64, m.FaceCount())}
	for i := 0; i < m.FaceCount(); i++ {
		field.PerFace[i] = m.Triangle(i).MinAngle() / (math.Pi / 3)
	}
	field.rescan()
	return field
}

// NormalField returns unit per-vertex normals, computing them locally
// when the mesh carries none; the mesh itself is never written
func NormalField(m *mesh.Mesh) []geometry.Vector3 {
	if m.Normals != nil && len(m.Normals) == m.VertexCount() {
		return m.Normals
	}
	return m.VertexNormals()
}

// FaceNormals returns unit per-face normals following the outward
// winding established at tessellation time
func FaceNormals(m *mesh.Mesh) []geometry.Vector3 {
	out := make([]geometry.Vector3, m.FaceCount())
	for i := range out {
		out[i] = m.Triangle(i).Normal
	}
	return out
}
