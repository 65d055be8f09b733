package main

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/polarbearcad/polarbear/internal/controller"
	"github.com/polarbearcad/polarbear/internal/store"
	"github.com/polarbearcad/polarbear/internal/worker"
	"github.com/polarbearcad/polarbear/pkg/analysis"
	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/stlio"
	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

func TestOpenHandlePrimitives(t *testing.T) {
	cases := []struct {
		source string
		volume float64
	}{
		{"box:1,1,1", 1},
		{"box:2,3,4", 24},
		{"cylinder:1,3", 3 * math.Pi},
		{"sphere:1", 4 * math.Pi / 3},
		{"cone:2,0,3", math.Pi * 4},
	}

	for _, c := range cases {
		h, err := openHandle(c.source)
		if err != nil {
			t.Fatalf("openHandle(%q) failed: %v", c.source, err)
		}
		if h.Kind != brep.Exact {
			t.Errorf("%s: expected exact handle", c.source)
		}
		if math.Abs(h.Shape.Volume()-c.volume) > 1e-9 {
			t.Errorf("%s: expected volume %f, got %f", c.source, c.volume, h.Shape.Volume())
		}
	}
}

func TestOpenHandleRejectsBadPrimitive(t *testing.T) {
	for _, source := range []string{"box:1,1", "sphere:-2", "box:a,b,c"} {
		if _, err := openHandle(source); !errors.Is(err, brep.ErrGeometry) {
			t.Errorf("openHandle(%q): expected ErrGeometry, got %v", source, err)
		}
	}
}

// Full round trip through the pipeline: export a cube, import it, view
// it, section it and crop it.
func TestCubePipeline(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cube.stl")

	shape, err := brep.MakeBox(geometry.Vector3{}, geometry.Vector3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("MakeBox failed: %v", err)
	}
	m, err := tessellate.Tessellate(ctx, shape, tessellate.PrecisionMedium)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if err := stlio.Save(path, m, "cube", true); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	h, err := stlio.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if h.Source.VertexCount() != 8 || h.Source.FaceCount() != 12 {
		t.Fatalf("Expected 8 vertices and 12 faces, got %d and %d",
			h.Source.VertexCount(), h.Source.FaceCount())
	}

	st := store.New(tessellate.PrecisionMedium)
	id, err := st.Load(h)
	if err != nil {
		t.Fatalf("store.Load failed: %v", err)
	}

	ctrl := controller.New(st, worker.NewPool(2))
	if err := ctrl.SetActiveModel(ctx, id); err != nil {
		t.Fatalf("SetActiveModel failed: %v", err)
	}

	// Section through the middle: one closed square of perimeter 4.
	b := h.Source.BoundingBox()
	mid := b.Min.Lerp(b.Max, 0.5)
	ctrl.SetClipPlane(ctx, geometry.AxisPlane(2, mid))
	if err := ctrl.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	frame := ctrl.Render()
	if frame.Section == nil || len(frame.Section.Contours) != 1 {
		t.Fatalf("Expected one section contour, got %+v", frame.Section)
	}
	if !frame.Section.Contours[0].Closed {
		t.Error("Expected a closed section contour")
	}
	if math.Abs(frame.Section.Perimeter()-4.0) > 1e-9 {
		t.Errorf("Expected section perimeter 4, got %f", frame.Section.Perimeter())
	}

	// Crop away the top half: volume halves, mesh stays closed.
	box := geometry.NewBoundingBoxFromCorners(b.Min, geometry.NewVector3(b.Max.X, b.Max.Y, mid.Z))
	if err := ctrl.Crop(ctx, box); err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	props, err := st.Properties(ctx, id)
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	if !props.VolumeReliable {
		t.Fatal("Expected cropped cube to stay closed")
	}
	if math.Abs(props.Volume-0.5) > 1e-9 {
		t.Errorf("Expected volume 0.5 after crop, got %f", props.Volume)
	}
	snap, err := st.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Handle.Kind != brep.MeshOnly {
		t.Errorf("Expected mesh-only handle after edit, got %v", snap.Handle.Kind)
	}

	// Elevation over the cropped model still spans the full range.
	ctrl.SetField(ctx, analysis.FieldElevation)
	if err := ctrl.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	frame = ctrl.Render()
	if frame.Field == nil {
		t.Fatal("Expected an elevation field")
	}
	if math.Abs(frame.Field.Min) > 1e-9 || math.Abs(frame.Field.Max-1.0) > 1e-9 {
		t.Errorf("Expected normalized field range [0,1], got [%f, %f]", frame.Field.Min, frame.Field.Max)
	}
}
