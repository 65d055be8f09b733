package controller

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/polarbearcad/polarbear/internal/store"
	"github.com/polarbearcad/polarbear/internal/worker"
	"github.com/polarbearcad/polarbear/pkg/analysis"
	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

func newBoxController(t *testing.T) (*Controller, string) {
	t.Helper()
	st := store.New(tessellate.PrecisionMedium)
	box, err := brep.MakeBox(geometry.Vector3{}, geometry.Vector3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("MakeBox failed: %v", err)
	}
	id, err := st.Load(brep.NewExactHandle("box", box))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c := New(st, worker.NewPool(2))
	if err := c.SetActiveModel(context.Background(), id); err != nil {
		t.Fatalf("SetActiveModel failed: %v", err)
	}
	return c, id
}

func TestSectionToolProducesContour(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()

	plane := geometry.AxisPlane(2, geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	c.SetClipPlane(ctx, plane)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	frame := c.Render()
	if frame.Tool != ToolSection {
		t.Errorf("Expected section tool, got %v", frame.Tool)
	}
	if frame.Section == nil || len(frame.Section.Contours) != 1 {
		t.Fatal("Expected one section contour in the frame")
	}
	if math.Abs(frame.Section.Perimeter()-4.0) > 1e-9 {
		t.Errorf("Expected perimeter 4, got %f", frame.Section.Perimeter())
	}
}

func TestMeasureTwoPicks(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()
	c.SelectTool(ToolMeasure)

	down := geometry.Vector3{Z: -1}
	_, ok, err := c.Pick(ctx, geometry.NewRay(geometry.Vector3{X: 0.25, Y: 0.5, Z: 5}, down), 0.01)
	if err != nil || !ok {
		t.Fatalf("First pick failed: ok=%v err=%v", ok, err)
	}
	if !c.PendingMeasurement() {
		t.Fatal("First pick should leave a pending measurement")
	}

	_, ok, err = c.Pick(ctx, geometry.NewRay(geometry.Vector3{X: 0.75, Y: 0.5, Z: 5}, down), 0.01)
	if err != nil || !ok {
		t.Fatalf("Second pick failed: ok=%v err=%v", ok, err)
	}
	if c.PendingMeasurement() {
		t.Error("Second pick should complete the measurement")
	}

	frame := c.Render()
	if frame.Measurement == nil {
		t.Fatal("Completed measurement should appear in the frame")
	}
	if math.Abs(frame.Measurement.Distance-0.5) > 1e-9 {
		t.Errorf("Expected distance 0.5, got %f", frame.Measurement.Distance)
	}
}

func TestToolSwitchDiscardsPartialMeasurement(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()
	c.SelectTool(ToolMeasure)

	_, ok, err := c.Pick(ctx, geometry.NewRay(geometry.Vector3{X: 0.5, Y: 0.5, Z: 5}, geometry.Vector3{Z: -1}), 0.01)
	if err != nil || !ok {
		t.Fatalf("Pick failed: ok=%v err=%v", ok, err)
	}
	if !c.PendingMeasurement() {
		t.Fatal("Pick should be pending")
	}

	c.SelectTool(ToolPick)
	if c.PendingMeasurement() {
		t.Error("Tool switch should discard the partial measurement")
	}
	if c.Render().Measurement != nil {
		t.Error("No measurement should have been produced")
	}
}

func TestFailedEditRevertsToIdleKeepsFrame(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()

	c.SetClipPlane(ctx, geometry.AxisPlane(2, geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	before := c.Render()
	if before.Section == nil {
		t.Fatal("Expected a section overlay before the edit")
	}

	err := c.Simplify(ctx, 4, 1e-12)
	if !errors.Is(err, brep.ErrToleranceUnreachable) {
		t.Fatalf("Expected ErrToleranceUnreachable, got %v", err)
	}

	after := c.Render()
	if after.Tool != ToolIdle {
		t.Errorf("Failed edit should drop to idle, got %v", after.Tool)
	}
	if after.Mesh != before.Mesh {
		t.Error("Failed edit must leave the displayed mesh untouched")
	}
	if after.Section == nil {
		t.Error("Failed edit must keep the previous overlay")
	}
}

func TestEditRefreshesFrame(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()

	box := geometry.NewBoundingBoxFromCorners(
		geometry.Vector3{},
		geometry.Vector3{X: 1, Y: 1, Z: 0.5},
	)
	if err := c.Crop(ctx, box); err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	frame := c.Render()
	if frame.Generation == 0 {
		t.Error("Edit should advance the frame generation")
	}
	bounds := frame.Mesh.BoundingBox()
	if math.Abs(bounds.Max.Z-0.5) > 1e-9 {
		t.Errorf("Frame mesh should reflect the crop, max z = %f", bounds.Max.Z)
	}
}

func TestAnalyzeToolAddsField(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()

	c.SetField(ctx, analysis.FieldElevation)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	frame := c.Render()
	if frame.Field == nil {
		t.Fatal("Analyze tool should attach a field to the frame")
	}
	if frame.Field.Kind != analysis.FieldElevation {
		t.Errorf("Expected elevation field, got %v", frame.Field.Kind)
	}
	if frame.Field.Min != 0 || frame.Field.Max != 1 {
		t.Errorf("Expected normalized range, got [%f, %f]", frame.Field.Min, frame.Field.Max)
	}
}

func TestPickWithoutModelFails(t *testing.T) {
	c := New(store.New(0), worker.NewPool(1))
	_, _, err := c.Pick(context.Background(), geometry.NewRay(geometry.Vector3{}, geometry.Vector3{Z: 1}), 0.1)
	if err == nil {
		t.Error("Pick without an active model should fail")
	}
}

func TestToolSwitchClearsCompletedMeasurement(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()
	c.SelectTool(ToolMeasure)

	down := geometry.Vector3{Z: -1}
	if _, ok, err := c.Pick(ctx, geometry.NewRay(geometry.Vector3{X: 0.25, Y: 0.5, Z: 5}, down), 0.01); err != nil || !ok {
		t.Fatalf("First pick failed: ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.Pick(ctx, geometry.NewRay(geometry.Vector3{X: 0.75, Y: 0.5, Z: 5}, down), 0.01); err != nil || !ok {
		t.Fatalf("Second pick failed: ok=%v err=%v", ok, err)
	}
	if c.Render().Measurement == nil {
		t.Fatal("Expected a completed measurement")
	}

	c.SelectTool(ToolSection)
	if c.Render().Measurement != nil {
		t.Error("Leaving the measure tool should clear the measurement")
	}
}

func TestNewRecomputeCancelsInFlight(t *testing.T) {
	c, id := newBoxController(t)
	ctx := context.Background()

	// Stand in for a slow recompute that a newer request supersedes
	blocked := c.pool.Submit(ctx, id, func(taskCtx context.Context) (any, error) {
		<-taskCtx.Done()
		return nil, taskCtx.Err()
	})
	c.mu.Lock()
	c.lastTask = blocked
	c.mu.Unlock()

	c.SetClipPlane(ctx, geometry.AxisPlane(2, geometry.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))
	if _, err := blocked.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected the superseded task to be cancelled, got %v", err)
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if c.Render().Section == nil {
		t.Error("The superseding recompute should still produce the overlay")
	}
}

func TestElevationFollowsUpAxis(t *testing.T) {
	c, _ := newBoxController(t)
	ctx := context.Background()

	c.SetUpAxis(0)
	c.SetField(ctx, analysis.FieldElevation)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	frame := c.Render()
	if frame.Field == nil {
		t.Fatal("Expected an elevation field")
	}
	// On the unit box the normalized elevation along x equals the x
	// coordinate itself
	for i, p := range frame.Mesh.Positions {
		if math.Abs(frame.Field.PerVertex[i]-p.X) > 1e-12 {
			t.Fatalf("Vertex %d: expected elevation %f along x, got %f", i, p.X, frame.Field.PerVertex[i])
		}
	}
}
