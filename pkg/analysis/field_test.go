package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

// flatGrid builds a 3x3 vertex sheet in the z=0 plane; vertex 4 is the
// single interior vertex
func flatGrid() *mesh.Mesh {
	m := mesh.New()
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			m.Positions = append(m.Positions, geometry.Vector3{X: float64(x), Y: float64(y)})
		}
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			i := y*3 + x
			m.Faces = append(m.Faces, [3]int{i, i + 1, i + 4}, [3]int{i, i + 4, i + 3})
		}
	}
	return m
}

func sphereMesh(t *testing.T, radius float64) *mesh.Mesh {
	t.Helper()
	sphere, err := brep.MakeSphere(geometry.Vector3{}, radius)
	if err != nil {
		t.Fatalf("MakeSphere failed: %v", err)
	}
	m, err := tessellate.Tessellate(context.Background(), sphere, radius/100)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	return m
}

func TestGaussianCurvatureFlatInterior(t *testing.T) {
	field := GaussianCurvature(flatGrid())

	if field.Unstable[4] {
		t.Fatal("Interior vertex should be stable")
	}
	if math.Abs(field.PerVertex[4]) > 1e-10 {
		t.Errorf("Flat sheet interior should have zero Gaussian curvature, got %g", field.PerVertex[4])
	}
	for i := 0; i < 9; i++ {
		if i != 4 && !field.Unstable[i] {
			t.Errorf("Boundary vertex %d should be flagged unstable", i)
		}
	}
}

func TestMeanCurvatureFlatInterior(t *testing.T) {
	field := MeanCurvature(flatGrid())

	if field.Unstable[4] {
		t.Fatal("Interior vertex should be stable")
	}
	if math.Abs(field.PerVertex[4]) > 1e-10 {
		t.Errorf("Flat sheet interior should have zero mean curvature, got %g", field.PerVertex[4])
	}
}

func TestGaussianCurvatureSphere(t *testing.T) {
	m := sphereMesh(t, 2.0)
	field := GaussianCurvature(m)

	// Exact value is 1/r^2 = 0.25
	sum, n := 0.0, 0
	for i, k := range field.PerVertex {
		if field.Unstable[i] {
			continue
		}
		if k <= 0 {
			t.Fatalf("Sphere vertex %d has non-positive Gaussian curvature %g", i, k)
		}
		sum += k
		n++
	}
	if n == 0 {
		t.Fatal("No stable vertices on a closed sphere")
	}
	avg := sum / float64(n)
	if math.Abs(avg-0.25) > 0.25*0.2 {
		t.Errorf("Expected average Gaussian curvature near 0.25, got %f", avg)
	}
}

func TestMeanCurvatureSphereIsConvex(t *testing.T) {
	m := sphereMesh(t, 1.0)
	field := MeanCurvature(m)

	for i, h := range field.PerVertex {
		if field.Unstable[i] {
			continue
		}
		if h <= 0 {
			t.Fatalf("Convex sphere should have positive mean curvature, vertex %d got %g", i, h)
		}
	}
}

func TestElevationNormalized(t *testing.T) {
	m := unitCubeMesh(t)
	field := Elevation(m, 2)

	if field.Min != 0 || field.Max != 1 {
		t.Errorf("Expected elevation range [0, 1], got [%f, %f]", field.Min, field.Max)
	}
	for i, p := range m.Positions {
		if math.Abs(field.PerVertex[i]-p.Z) > 1e-10 {
			t.Errorf("Unit cube elevation should equal z, vertex %d: %f vs %f", i, field.PerVertex[i], p.Z)
		}
	}
}

func TestElevationFlatModel(t *testing.T) {
	field := Elevation(flatGrid(), 2)
	for i, v := range field.PerVertex {
		if v != 0.5 {
			t.Errorf("Flat model elevation should be 0.5 everywhere, vertex %d got %f", i, v)
		}
	}
}

func TestQualityEquilateral(t *testing.T) {
	tri := geometry.Triangle{
		V1: geometry.Vector3{X: 0, Y: 0},
		V2: geometry.Vector3{X: 1, Y: 0},
		V3: geometry.Vector3{X: 0.5, Y: math.Sqrt(3) / 2},
	}
	m := mesh.FromTriangles([]geometry.Triangle{tri})

	field := Quality(m)
	if math.Abs(field.PerFace[0]-1.0) > 1e-10 {
		t.Errorf("Equilateral triangle should score 1, got %f", field.PerFace[0])
	}
}

func TestQualitySliverScoresLow(t *testing.T) {
	tri := geometry.Triangle{
		V1: geometry.Vector3{X: 0, Y: 0},
		V2: geometry.Vector3{X: 1, Y: 0},
		V3: geometry.Vector3{X: 0.5, Y: 0.001},
	}
	m := mesh.FromTriangles([]geometry.Triangle{tri})

	field := Quality(m)
	if field.PerFace[0] > 0.05 {
		t.Errorf("Sliver should score near 0, got %f", field.PerFace[0])
	}
}

func TestNormalFieldComputesOnDemand(t *testing.T) {
	m := unitCubeMesh(t)
	m.Normals = nil

	normals := NormalField(m)
	if len(normals) != m.VertexCount() {
		t.Fatalf("Expected %d normals, got %d", m.VertexCount(), len(normals))
	}
	if m.Normals != nil {
		t.Error("NormalField must not write normals back to the mesh")
	}
}

func TestMeanCurvatureLeavesMeshUntouched(t *testing.T) {
	m := sphereMesh(t, 1)
	m.Normals = nil

	MeanCurvature(m)
	if m.Normals != nil {
		t.Error("MeanCurvature must not write normals back to the mesh")
	}
}

func TestExactCurvatureOnSphere(t *testing.T) {
	radius := 2.0
	sphere, err := brep.MakeSphere(geometry.Vector3{}, radius)
	if err != nil {
		t.Fatalf("MakeSphere failed: %v", err)
	}
	h := brep.NewExactHandle("sphere", sphere)
	m, err := tessellate.Tessellate(context.Background(), sphere, 0.1)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	field := Curvature(h, m, FieldGaussianCurvature)
	want := 1 / (radius * radius)
	for i, k := range field.PerVertex {
		if field.Unstable[i] {
			t.Fatalf("Vertex %d unexpectedly unstable", i)
		}
		if math.Abs(k-want) > 1e-12 {
			t.Fatalf("Vertex %d: expected exact Gaussian curvature %g, got %g", i, want, k)
		}
	}

	mean := Curvature(h, m, FieldMeanCurvature)
	wantMean := 1 / radius
	for i, k := range mean.PerVertex {
		if math.Abs(k-wantMean) > 1e-12 {
			t.Fatalf("Vertex %d: expected exact mean curvature %g, got %g", i, wantMean, k)
		}
	}
}

func TestExactCurvatureOnCylinderWall(t *testing.T) {
	radius := 0.5
	cyl, err := brep.MakeCylinder(geometry.Vector3{}, geometry.Vector3{Z: 1}, radius, 2)
	if err != nil {
		t.Fatalf("MakeCylinder failed: %v", err)
	}
	h := brep.NewExactHandle("cyl", cyl)
	m, err := tessellate.Tessellate(context.Background(), cyl, 0.05)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	field := Curvature(h, m, FieldMeanCurvature)
	for i, p := range m.Positions {
		onWall := math.Abs(math.Hypot(p.X, p.Y)-radius) < 1e-9 &&
			p.Z > 1e-9 && p.Z < 2-1e-9
		if !onWall {
			continue
		}
		want := 1 / (2 * radius)
		if math.Abs(field.PerVertex[i]-want) > 1e-12 {
			t.Fatalf("Wall vertex %d: expected mean curvature %g, got %g", i, want, field.PerVertex[i])
		}
	}
}

func TestCurvatureFallsBackToDiscrete(t *testing.T) {
	m := sphereMesh(t, 1)
	h := brep.NewMeshHandle("sphere", m)

	field := Curvature(h, m, FieldGaussianCurvature)

	// The discrete estimate is close to 1 but never bitwise exact.
	sum, count := 0.0, 0
	for i, k := range field.PerVertex {
		if field.Unstable[i] {
			continue
		}
		sum += k
		count++
	}
	if count == 0 {
		t.Fatal("Expected stable vertices")
	}
	avg := sum / float64(count)
	if math.Abs(avg-1.0) > 0.2 {
		t.Errorf("Expected discrete average near 1, got %f", avg)
	}
}
