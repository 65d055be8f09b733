package tessellate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

func TestTessellateBoxIsExact(t *testing.T) {
	box, _ := brep.MakeBox(geometry.Vector3{}, geometry.Vector3{X: 1, Y: 1, Z: 1})
	m, err := Tessellate(context.Background(), box, PrecisionMedium)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	if m.VertexCount() != 8 {
		t.Errorf("Expected 8 vertices for a box, got %d", m.VertexCount())
	}
	if m.FaceCount() != 12 {
		t.Errorf("Expected 12 triangles for a box, got %d", m.FaceCount())
	}
	if !m.IsClosed() {
		t.Error("Box mesh should be closed")
	}
	if area := mesh.Area(m); math.Abs(area-6.0) > 1e-10 {
		t.Errorf("Expected area 6, got %f", area)
	}
}

func TestTessellateSphereStaysWithinTolerance(t *testing.T) {
	sphere, _ := brep.MakeSphere(geometry.Vector3{}, 1)
	tolerance := 0.05
	m, err := Tessellate(context.Background(), sphere, tolerance)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	if !m.IsClosed() {
		t.Error("Sphere mesh should be closed")
	}
	for i, p := range m.Positions {
		if math.Abs(p.Length()-1.0) > 1e-10 {
			t.Fatalf("Vertex %d not on the unit sphere: |p|=%f", i, p.Length())
		}
	}

	// The inscribed mesh underestimates the volume by at most the
	// chordal deviation pushed through the surface area
	volume, ok := mesh.Volume(m)
	if !ok {
		t.Fatal("Sphere mesh should report a volume")
	}
	exact := sphere.Volume()
	if volume > exact {
		t.Errorf("Inscribed mesh volume %f exceeds exact %f", volume, exact)
	}
	if exact-volume > tolerance*sphere.SurfaceArea() {
		t.Errorf("Volume deficit %f exceeds tolerance bound", exact-volume)
	}
}

func TestTessellateRefinementIsMonotonic(t *testing.T) {
	cyl, _ := brep.MakeCylinder(geometry.Vector3{}, geometry.Vector3{Z: 1}, 1, 2)

	prev := 0
	for _, tol := range []float64{PrecisionLow, PrecisionMedium, PrecisionHigh} {
		m, err := Tessellate(context.Background(), cyl, tol)
		if err != nil {
			t.Fatalf("Tessellate at %f failed: %v", tol, err)
		}
		if m.FaceCount() < prev {
			t.Errorf("Tolerance %f produced fewer faces (%d) than a looser tolerance (%d)",
				tol, m.FaceCount(), prev)
		}
		prev = m.FaceCount()
	}
}

func TestTessellateCylinderDeviationBound(t *testing.T) {
	radius := 2.0
	cyl, _ := brep.MakeCylinder(geometry.Vector3{}, geometry.Vector3{Z: 1}, radius, 1)
	tolerance := 0.1
	m, err := Tessellate(context.Background(), cyl, tolerance)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	// Every wall edge chord midpoint must lie within tolerance of the
	// exact surface, i.e. at radial distance >= radius - tolerance
	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		mid := tri.V1.Lerp(tri.V2, 0.5)
		r := math.Hypot(mid.X, mid.Y)
		if r > radius+1e-10 {
			t.Fatalf("Chord midpoint outside the cylinder: r=%f", r)
		}
	}
}

func TestTessellateRejectsBadTolerance(t *testing.T) {
	box, _ := brep.MakeBox(geometry.Vector3{}, geometry.Vector3{X: 1, Y: 1, Z: 1})
	for _, tol := range []float64{0, -0.1} {
		_, err := Tessellate(context.Background(), box, tol)
		if !errors.Is(err, brep.ErrGeometry) {
			t.Errorf("Tolerance %f: expected ErrGeometry, got %v", tol, err)
		}
	}
}

func TestTessellateHonorsCancellation(t *testing.T) {
	sphere, _ := brep.MakeSphere(geometry.Vector3{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Tessellate(ctx, sphere, PrecisionHigh)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
