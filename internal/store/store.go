// Package store keeps the loaded models and their dual
// representations. Every model pairs a geometry handle (exact or
// mesh-only) with a display mesh tessellated at the model's tolerance.
// Snapshots are immutable; every change builds a new snapshot and
// swaps it in under the lock, so readers never see a half-updated
// model and results computed against an old generation are detected.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
	"github.com/polarbearcad/polarbear/pkg/meshedit"
	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

// Snapshot is one immutable model state. The display mesh is nil
// while the model is dirty, i.e. the tolerance changed and nothing
// re-tessellated yet.
type Snapshot struct {
	ID         string
	Name       string
	Handle     *brep.Handle
	Tolerance  float64
	Generation uint64

	mesh *mesh.Mesh
}

// Dirty reports whether the display mesh needs re-tessellation
func (s *Snapshot) Dirty() bool {
	return s.mesh == nil
}

// DisplayMesh returns the cached display mesh, or nil while dirty
func (s *Snapshot) DisplayMesh() *mesh.Mesh {
	return s.mesh
}

// Properties is the cached geometric report for a model. Exact models
// report analytic area and volume; mesh-only models report measures
// derived from the triangles, with the volume only reliable when the
// mesh is closed.
type Properties struct {
	Exact          bool
	SurfaceArea    float64
	Volume         float64
	VolumeReliable bool
	Centroid       geometry.Vector3
	Bounds         geometry.BoundingBox
	VertexCount    int
	FaceCount      int
}

// Store holds all loaded models
type Store struct {
	mu               sync.RWMutex
	models           map[string]*Snapshot
	props            map[string]cachedProps
	defaultTolerance float64
}

type cachedProps struct {
	generation uint64
	value      Properties
}

// New creates an empty store. Models load with the given tessellation
// tolerance until SetTolerance overrides it per model.
func New(defaultTolerance float64) *Store {
	if defaultTolerance <= 0 {
		defaultTolerance = tessellate.PrecisionMedium
	}
	return &Store{
		models:           make(map[string]*Snapshot),
		props:            make(map[string]cachedProps),
		defaultTolerance: defaultTolerance,
	}
}

// Load registers a geometry handle and returns the new model id. The
// display mesh is produced lazily on first access.
func (st *Store) Load(h *brep.Handle) (string, error) {
	if h == nil {
		return "", fmt.Errorf("nil geometry handle: %w", brep.ErrGeometry)
	}
	switch h.Kind {
	case brep.Exact:
		if h.Shape == nil {
			return "", fmt.Errorf("exact handle without a shape: %w", brep.ErrGeometry)
		}
	case brep.MeshOnly:
		if h.Source == nil {
			return "", fmt.Errorf("mesh handle without a mesh: %w", brep.ErrGeometry)
		}
	default:
		return "", fmt.Errorf("handle kind %v: %w", h.Kind, brep.ErrUnsupportedFormat)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Name:      h.Name,
		Handle:    h,
		Tolerance: st.defaultTolerance,
	}
	if h.Kind == brep.MeshOnly {
		// Tessellation of an imported mesh is the identity
		snap.mesh = h.Source
	}

	st.mu.Lock()
	st.models[snap.ID] = snap
	st.mu.Unlock()
	return snap.ID, nil
}

// Get returns the current snapshot of a model
func (st *Store) Get(id string) (*Snapshot, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	snap, ok := st.models[id]
	if !ok {
		return nil, fmt.Errorf("no model %q: %w", id, brep.ErrGeometry)
	}
	return snap, nil
}

// List returns the current snapshots sorted by name
func (st *Store) List() []*Snapshot {
	st.mu.RLock()
	out := make([]*Snapshot, 0, len(st.models))
	for _, snap := range st.models {
		out = append(out, snap)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unload removes a model
func (st *Store) Unload(id string) {
	st.mu.Lock()
	delete(st.models, id)
	delete(st.props, id)
	st.mu.Unlock()
}

// SetTolerance changes the tessellation tolerance of a model. Setting
// the current value is a no-op that does not dirty the mesh. An exact
// model becomes dirty and keeps no mesh until the next access; a
// mesh-only model records the value but its mesh never changes.
func (st *Store) SetTolerance(id string, tolerance float64) error {
	if tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g: %w", tolerance, brep.ErrGeometry)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	snap, ok := st.models[id]
	if !ok {
		return fmt.Errorf("no model %q: %w", id, brep.ErrGeometry)
	}
	if snap.Tolerance == tolerance {
		return nil
	}

	next := *snap
	next.Tolerance = tolerance
	next.Generation++
	if snap.Handle.Kind == brep.Exact {
		next.mesh = nil
	}
	st.models[id] = &next
	return nil
}

// Mesh returns the display mesh, re-tessellating a dirty exact model
// first. If the model changes generation while tessellation runs the
// result is discarded and the call reports ErrStaleResult.
func (st *Store) Mesh(ctx context.Context, id string) (*mesh.Mesh, error) {
	snap, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	if snap.mesh != nil {
		return snap.mesh, nil
	}

	m, err := tessellate.Tessellate(ctx, snap.Handle.Shape, snap.Tolerance)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	current, ok := st.models[id]
	if !ok || current.Generation != snap.Generation {
		return nil, fmt.Errorf("model %q changed during tessellation: %w", id, brep.ErrStaleResult)
	}
	if current.mesh == nil {
		// Caching the mesh does not change the model state, so the
		// generation stays put
		next := *current
		next.mesh = m
		st.models[id] = &next
	}
	return m, nil
}

// Properties returns the cached geometric report, computing it on
// first access per generation
func (st *Store) Properties(ctx context.Context, id string) (Properties, error) {
	snap, err := st.Get(id)
	if err != nil {
		return Properties{}, err
	}

	st.mu.RLock()
	cached, ok := st.props[id]
	st.mu.RUnlock()
	if ok && cached.generation == snap.Generation {
		return cached.value, nil
	}

	m, err := st.Mesh(ctx, id)
	if err != nil {
		return Properties{}, err
	}
	derived := mesh.ComputeProperties(m)

	props := Properties{
		SurfaceArea:    derived.SurfaceArea,
		Volume:         derived.Volume,
		VolumeReliable: derived.Closed,
		Centroid:       derived.Centroid,
		Bounds:         derived.Bounds,
		VertexCount:    derived.VertexCount,
		FaceCount:      derived.FaceCount,
	}
	if snap.Handle.Kind == brep.Exact {
		props.Exact = true
		props.SurfaceArea = snap.Handle.Shape.SurfaceArea()
		props.Volume = snap.Handle.Shape.Volume()
		props.VolumeReliable = true
		props.Bounds = snap.Handle.Shape.BoundingBox()
	}

	st.mu.Lock()
	if current, ok := st.models[id]; ok && current.Generation == snap.Generation {
		st.props[id] = cachedProps{generation: snap.Generation, value: props}
	}
	st.mu.Unlock()
	return props, nil
}

// Edit is a mesh-to-mesh transformation applied through ApplyEdit
type Edit func(*mesh.Mesh) (*mesh.Mesh, error)

// ApplyEdit runs an editing operation against the model's current
// mesh and swaps the result in. The model becomes mesh-only: edits
// have no exact counterpart, so the analytic shape no longer matches.
// If another change lands while the edit runs, the edit result is
// discarded with ErrStaleResult.
func (st *Store) ApplyEdit(ctx context.Context, id string, edit Edit) error {
	snap, err := st.Get(id)
	if err != nil {
		return err
	}
	m, err := st.Mesh(ctx, id)
	if err != nil {
		return err
	}

	edited, err := edit(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	current, ok := st.models[id]
	if !ok {
		return fmt.Errorf("no model %q: %w", id, brep.ErrGeometry)
	}
	if current.Generation != snap.Generation {
		return fmt.Errorf("model %q changed during edit: %w", id, brep.ErrStaleResult)
	}

	next := *current
	next.Handle = brep.NewMeshHandle(current.Name, edited)
	next.Handle.Units = current.Handle.Units
	next.mesh = edited
	next.Generation++
	st.models[id] = &next
	return nil
}

// Simplify reduces the model mesh toward targetFaces within the
// deviation bound
func (st *Store) Simplify(ctx context.Context, id string, targetFaces int, maxDeviation float64) error {
	return st.ApplyEdit(ctx, id, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return meshedit.Simplify(m, targetFaces, maxDeviation)
	})
}

// Subdivide refines the model mesh by the given number of levels
func (st *Store) Subdivide(ctx context.Context, id string, levels int, smooth bool) error {
	return st.ApplyEdit(ctx, id, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return meshedit.Subdivide(m, levels, smooth)
	})
}

// Crop clips the model mesh to the box
func (st *Store) Crop(ctx context.Context, id string, box geometry.BoundingBox) error {
	return st.ApplyEdit(ctx, id, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return meshedit.Crop(m, box)
	})
}

// ExportExact returns the analytic shape for exact-format export.
// Mesh-only models have no analytic surfaces to write.
func (st *Store) ExportExact(id string) (*brep.Shape, error) {
	snap, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	if snap.Handle.Kind != brep.Exact {
		return nil, fmt.Errorf("model %q is mesh-only: %w", id, brep.ErrNotExportable)
	}
	return snap.Handle.Shape, nil
}

// ExportMesh returns the mesh representation for writing out. Models
// whose mesh has no triangles cannot be exported.
func (st *Store) ExportMesh(ctx context.Context, id string) (*mesh.Mesh, error) {
	m, err := st.Mesh(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.FaceCount() == 0 {
		return nil, fmt.Errorf("model %q has no triangles: %w", id, brep.ErrNotExportable)
	}
	return m, nil
}
