// Package controller coordinates interactive work on top of the
// store: the active tool, the clip plane, pick-based measurement and
// analysis overlays. It owns no rendering; Render returns plain data
// for whatever front end displays it. Recomputes run on the worker
// pool and results from superseded states are dropped.
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/polarbearcad/polarbear/internal/store"
	"github.com/polarbearcad/polarbear/internal/worker"
	"github.com/polarbearcad/polarbear/pkg/analysis"
	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Tool is the active interaction mode
type Tool int

const (
	ToolIdle Tool = iota
	ToolSection
	ToolMeasure
	ToolPick
	ToolAnalyze
)

func (t Tool) String() string {
	switch t {
	case ToolIdle:
		return "idle"
	case ToolSection:
		return "section"
	case ToolMeasure:
		return "measure"
	case ToolPick:
		return "pick"
	case ToolAnalyze:
		return "analyze"
	}
	return "unknown"
}

// Frame is the data a front end needs to draw one state of the
// viewer. Frames are immutable once handed out.
type Frame struct {
	ModelID     string
	Generation  uint64
	Tool        Tool
	Mesh        *mesh.Mesh
	Section     *analysis.CrossSection
	Measurement *analysis.Measurement
	Field       *analysis.Field
}

// Controller drives one active model through the interaction tools
type Controller struct {
	store *store.Store
	pool  *worker.Pool

	mu        sync.Mutex
	modelID   string
	tool      Tool
	clipPlane *geometry.Plane
	fieldKind analysis.FieldKind
	upAxis    int
	firstPick *analysis.Pick
	frame     Frame
	lastTask  *worker.Task
}

// New creates a controller over the store, running recomputes on the
// pool. The up axis defaults to z.
func New(st *store.Store, pool *worker.Pool) *Controller {
	return &Controller{store: st, pool: pool, tool: ToolIdle, upAxis: 2}
}

// SetUpAxis selects the axis the elevation overlay measures along
// (0=x, 1=y, 2=z)
func (c *Controller) SetUpAxis(axis int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if axis >= 0 && axis <= 2 {
		c.upAxis = axis
	}
}

// SetActiveModel points the controller at a model and resets all tool
// state
func (c *Controller) SetActiveModel(ctx context.Context, id string) error {
	if _, err := c.store.Get(id); err != nil {
		return err
	}
	c.mu.Lock()
	c.modelID = id
	c.tool = ToolIdle
	c.clipPlane = nil
	c.firstPick = nil
	c.frame = Frame{ModelID: id, Tool: ToolIdle}
	c.mu.Unlock()
	return c.refresh(ctx)
}

// ActiveModel returns the id of the model under interaction
func (c *Controller) ActiveModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelID
}

// Tool returns the active tool
func (c *Controller) Tool() Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

// SelectTool switches the interaction mode. Leaving the measure tool
// clears the measurement, finished or not; the section overlay stays
// until the plane itself is cleared.
func (c *Controller) SelectTool(tool Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tool == c.tool {
		return
	}
	if c.tool == ToolMeasure {
		c.firstPick = nil
		c.frame.Measurement = nil
	}
	c.tool = tool
}

// Render returns the latest completed frame
func (c *Controller) Render() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := c.frame
	frame.Tool = c.tool
	return frame
}

// Flush waits for the most recently submitted background recompute
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	task := c.lastTask
	c.mu.Unlock()
	if task == nil {
		return nil
	}
	_, err := task.Wait(ctx)
	return err
}

// SetClipPlane sets the section plane and schedules a recompute of
// the cross-section. Repeated calls supersede each other; the section
// tool becomes active.
func (c *Controller) SetClipPlane(ctx context.Context, plane geometry.Plane) {
	c.mu.Lock()
	c.clipPlane = &plane
	if c.tool == ToolMeasure {
		c.frame.Measurement = nil
	}
	c.tool = ToolSection
	c.firstPick = nil
	c.mu.Unlock()
	c.scheduleRecompute(ctx)
}

// ClearClipPlane removes the section plane and its overlay
func (c *Controller) ClearClipPlane() {
	c.mu.Lock()
	c.clipPlane = nil
	c.frame.Section = nil
	c.mu.Unlock()
}

// SetField selects the analysis overlay and schedules its computation
func (c *Controller) SetField(ctx context.Context, kind analysis.FieldKind) {
	c.mu.Lock()
	c.fieldKind = kind
	if c.tool == ToolMeasure {
		c.frame.Measurement = nil
	}
	c.tool = ToolAnalyze
	c.firstPick = nil
	c.mu.Unlock()
	c.scheduleRecompute(ctx)
}

// Pick resolves a ray against the active model. Under the measure
// tool the first pick is held until the second completes the
// measurement; under other tools the pick is returned but leaves no
// state behind.
func (c *Controller) Pick(ctx context.Context, ray geometry.Ray, snapRadius float64) (analysis.Pick, bool, error) {
	c.mu.Lock()
	id := c.modelID
	tool := c.tool
	c.mu.Unlock()
	if id == "" {
		return analysis.Pick{}, false, fmt.Errorf("no active model: %w", brep.ErrGeometry)
	}

	snap, err := c.store.Get(id)
	if err != nil {
		return analysis.Pick{}, false, err
	}
	m, err := c.store.Mesh(ctx, id)
	if err != nil {
		return analysis.Pick{}, false, err
	}
	pick, ok := analysis.ResolvePickOn(snap.Handle, m, ray, snapRadius)
	if !ok {
		return analysis.Pick{}, false, nil
	}

	if tool == ToolMeasure {
		c.mu.Lock()
		if c.firstPick == nil {
			p := pick
			c.firstPick = &p
		} else {
			m := analysis.Measure(*c.firstPick, pick)
			c.frame.Measurement = &m
			c.firstPick = nil
		}
		c.mu.Unlock()
	}
	return pick, true, nil
}

// PendingMeasurement reports whether the measure tool holds a first
// pick and waits for the second
func (c *Controller) PendingMeasurement() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstPick != nil
}

// SetTolerance changes the active model's tessellation tolerance and
// refreshes the frame
func (c *Controller) SetTolerance(ctx context.Context, tolerance float64) error {
	c.mu.Lock()
	id := c.modelID
	c.mu.Unlock()
	if err := c.store.SetTolerance(id, tolerance); err != nil {
		return err
	}
	c.scheduleRecompute(ctx)
	return nil
}

// Simplify runs mesh simplification on the active model. On failure
// the tool drops back to idle and the frame keeps its last good state.
func (c *Controller) Simplify(ctx context.Context, targetFaces int, maxDeviation float64) error {
	return c.edit(ctx, func(id string) error {
		return c.store.Simplify(ctx, id, targetFaces, maxDeviation)
	})
}

// Subdivide refines the active model's mesh
func (c *Controller) Subdivide(ctx context.Context, levels int, smooth bool) error {
	return c.edit(ctx, func(id string) error {
		return c.store.Subdivide(ctx, id, levels, smooth)
	})
}

// Crop clips the active model to the box
func (c *Controller) Crop(ctx context.Context, box geometry.BoundingBox) error {
	return c.edit(ctx, func(id string) error {
		return c.store.Crop(ctx, id, box)
	})
}

func (c *Controller) edit(ctx context.Context, op func(id string) error) error {
	c.mu.Lock()
	id := c.modelID
	c.mu.Unlock()
	if id == "" {
		return fmt.Errorf("no active model: %w", brep.ErrGeometry)
	}

	if err := op(id); err != nil {
		c.mu.Lock()
		c.tool = ToolIdle
		c.firstPick = nil
		c.mu.Unlock()
		return err
	}
	return c.refresh(ctx)
}

// scheduleRecompute rebuilds the frame on the worker pool. A newer
// request supersedes the one in flight, which is cancelled rather
// than left to finish; the pool still serializes tasks per model, and
// a task finishing against an older generation than the current frame
// is dropped.
func (c *Controller) scheduleRecompute(ctx context.Context) {
	c.mu.Lock()
	id := c.modelID
	c.mu.Unlock()
	if id == "" {
		return
	}

	task := c.pool.Submit(ctx, id, func(taskCtx context.Context) (any, error) {
		frame, err := c.buildFrame(taskCtx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.modelID == id && frame.Generation >= c.frame.Generation {
			measurement := c.frame.Measurement
			c.frame = frame
			c.frame.Measurement = measurement
		}
		c.mu.Unlock()
		return nil, nil
	})

	c.mu.Lock()
	prev := c.lastTask
	c.lastTask = task
	c.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
}

// refresh rebuilds the frame synchronously
func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	id := c.modelID
	c.mu.Unlock()

	frame, err := c.buildFrame(ctx, id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	measurement := c.frame.Measurement
	c.frame = frame
	c.frame.Measurement = measurement
	c.mu.Unlock()
	return nil
}

func (c *Controller) buildFrame(ctx context.Context, id string) (Frame, error) {
	snap, err := c.store.Get(id)
	if err != nil {
		return Frame{}, err
	}
	m, err := c.store.Mesh(ctx, id)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{ModelID: id, Generation: snap.Generation, Mesh: m}

	c.mu.Lock()
	plane := c.clipPlane
	tool := c.tool
	fieldKind := c.fieldKind
	upAxis := c.upAxis
	c.mu.Unlock()

	if plane != nil {
		cs, err := analysis.Section(ctx, snap.Handle, m, *plane, snap.Tolerance)
		if err != nil {
			return Frame{}, err
		}
		frame.Section = &cs
	}

	if tool == ToolAnalyze {
		var field analysis.Field
		switch fieldKind {
		case analysis.FieldGaussianCurvature, analysis.FieldMeanCurvature:
			field = analysis.Curvature(snap.Handle, m, fieldKind)
		case analysis.FieldQuality:
			field = analysis.Quality(m)
		default:
			field = analysis.Elevation(m, upAxis)
		}
		frame.Field = &field
	}
	return frame, nil
}
