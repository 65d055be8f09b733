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

func unitCubeMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	box, err := brep.MakeBox(geometry.Vector3{}, geometry.Vector3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("MakeBox failed: %v", err)
	}
	m, err := tessellate.Tessellate(context.Background(), box, tessellate.PrecisionMedium)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	return m
}

func TestSectionUnitCubeMidPlane(t *testing.T) {
	m := unitCubeMesh(t)
	plane := geometry.AxisPlane(2, geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	cs := SectionMesh(m, plane)

	if len(cs.Contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(cs.Contours))
	}
	if !cs.Contours[0].Closed {
		t.Error("Cube section should be a closed contour")
	}
	if math.Abs(cs.Perimeter()-4.0) > 1e-9 {
		t.Errorf("Expected perimeter 4, got %f", cs.Perimeter())
	}
}

func TestSectionPointsLieOnPlane(t *testing.T) {
	m := unitCubeMesh(t)
	plane, _ := geometry.NewPlane(
		geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5},
		geometry.Vector3{X: 1, Y: 1, Z: 1},
	)

	cs := SectionMesh(m, plane)
	if cs.IsEmpty() {
		t.Fatal("Diagonal plane through the cube center should cut it")
	}
	for _, contour := range cs.Contours {
		for _, p := range contour.Points {
			if math.Abs(plane.SignedDistance(p)) > 1e-9 {
				t.Fatalf("Section point %v is off the plane by %g", p, plane.SignedDistance(p))
			}
		}
	}
}

func TestSectionMissesModel(t *testing.T) {
	m := unitCubeMesh(t)
	plane := geometry.AxisPlane(2, geometry.Vector3{Z: 5})

	cs := SectionMesh(m, plane)
	if !cs.IsEmpty() {
		t.Errorf("Plane outside the model should produce no contours, got %d", len(cs.Contours))
	}
}

func TestSectionOpenMeshGivesOpenChain(t *testing.T) {
	// A single quad standing in the XZ plane, cut by a horizontal plane
	quad := &mesh.Mesh{
		Positions: []geometry.Vector3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	plane := geometry.AxisPlane(2, geometry.Vector3{Z: 0.5})

	cs := SectionMesh(quad, plane)
	if len(cs.Contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(cs.Contours))
	}
	if cs.Contours[0].Closed {
		t.Error("Section of an open sheet should be an open chain")
	}
	if math.Abs(cs.Contours[0].Length()-1.0) > 1e-9 {
		t.Errorf("Expected chain length 1, got %f", cs.Contours[0].Length())
	}
}

func TestSectionExactSphereFitsCircle(t *testing.T) {
	sphere, err := brep.MakeSphere(geometry.Vector3{}, 1)
	if err != nil {
		t.Fatalf("MakeSphere failed: %v", err)
	}
	h := brep.NewExactHandle("sphere", sphere)
	display, err := tessellate.Tessellate(context.Background(), sphere, tessellate.PrecisionLow)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	plane := geometry.AxisPlane(2, geometry.Vector3{})
	cs, err := Section(context.Background(), h, display, plane, tessellate.PrecisionLow)
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	if len(cs.Contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(cs.Contours))
	}

	fit, err := cs.FitCircle(0)
	if err != nil {
		t.Fatalf("FitCircle failed: %v", err)
	}
	// The exact path refines far past the display tolerance, so the
	// equator radius lands much closer than PrecisionLow
	if math.Abs(fit.Radius-1.0) > 0.05 {
		t.Errorf("Expected radius 1, got %f", fit.Radius)
	}
}

func TestAxisSectionFraction(t *testing.T) {
	m := unitCubeMesh(t)
	cs, err := AxisSection(context.Background(), nil, m, 2, 0.5, tessellate.PrecisionMedium)
	if err != nil {
		t.Fatalf("AxisSection failed: %v", err)
	}
	if math.Abs(cs.Perimeter()-4.0) > 1e-9 {
		t.Errorf("Expected perimeter 4 at the mid fraction, got %f", cs.Perimeter())
	}
}

func TestSectionHonorsCancellation(t *testing.T) {
	sphere, _ := brep.MakeSphere(geometry.Vector3{}, 1)
	h := brep.NewExactHandle("sphere", sphere)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Section(ctx, h, nil, geometry.AxisPlane(2, geometry.Vector3{}), tessellate.PrecisionMedium)
	if err == nil {
		t.Error("Expected an error from a cancelled context")
	}
}

func TestSectionReportsSignedDistances(t *testing.T) {
	m := unitCubeMesh(t)
	plane := geometry.AxisPlane(2, geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	cs := SectionMesh(m, plane)
	if len(cs.Distances) != m.VertexCount() {
		t.Fatalf("Expected %d distances, got %d", m.VertexCount(), len(cs.Distances))
	}
	for i, d := range cs.Distances {
		want := m.Positions[i].Z - 0.5
		if math.Abs(d-want) > 1e-12 {
			t.Errorf("Vertex %d: expected signed distance %f, got %f", i, want, d)
		}
	}
}

// octahedron builds a closed mesh whose four equator vertices lie
// exactly in the z=0 plane
func octahedron() *mesh.Mesh {
	m := mesh.New()
	m.Positions = []geometry.Vector3{
		{X: 1}, {Y: 1}, {X: -1}, {Y: -1}, // equator
		{Z: 1}, {Z: -1}, // poles
	}
	m.Faces = [][3]int{
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
		{1, 0, 5}, {2, 1, 5}, {3, 2, 5}, {0, 3, 5},
	}
	return m
}

func TestSectionThroughEdgeRing(t *testing.T) {
	// The plane runs exactly through the equator edges, so every cut
	// edge is shared by a face above and a face below it.
	m := octahedron()
	cs := SectionMesh(m, geometry.AxisPlane(2, geometry.Vector3{}))

	if len(cs.Contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(cs.Contours))
	}
	c := cs.Contours[0]
	if !c.Closed {
		t.Error("Equator contour should be closed")
	}
	if len(c.Points) != 4 {
		t.Errorf("Expected the 4 equator vertices, got %d points", len(c.Points))
	}
	want := 4 * math.Sqrt2
	if math.Abs(c.Length()-want) > 1e-9 {
		t.Errorf("Expected perimeter %f, got %f", want, c.Length())
	}
}
