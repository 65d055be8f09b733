package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/polarbearcad/polarbear/internal/config"
	"github.com/polarbearcad/polarbear/internal/store"
	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/stlio"
)

// session bundles the store and the settings a subcommand runs with.
type session struct {
	cfg   config.Config
	store *store.Store
}

func newSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flagTol > 0 {
		cfg.Tolerance = flagTol
	}
	tol, err := cfg.DisplayTolerance()
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, store: store.New(tol)}, nil
}

// open loads a model source into the store and returns its id. The
// source is either an STL path or a primitive spec like
// "box:2,3,4", "cylinder:1,5", "sphere:2" or "cone:2,0.5,3".
func (s *session) open(source string) (string, error) {
	h, err := openHandle(source)
	if err != nil {
		return "", err
	}
	return s.store.Load(h)
}

func openHandle(source string) (*brep.Handle, error) {
	name, spec, ok := strings.Cut(source, ":")
	if !ok {
		return stlio.Load(source)
	}

	dims, err := parseDims(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: bad primitive %q: %v", brep.ErrGeometry, source, err)
	}

	origin := geometry.Vector3{}
	up := geometry.Vector3{Z: 1}

	var shape *brep.Shape
	switch name {
	case "box":
		if len(dims) != 3 {
			return nil, fmt.Errorf("%w: box needs dx,dy,dz", brep.ErrGeometry)
		}
		shape, err = brep.MakeBox(origin, geometry.NewVector3(dims[0], dims[1], dims[2]))
	case "cylinder":
		if len(dims) != 2 {
			return nil, fmt.Errorf("%w: cylinder needs radius,height", brep.ErrGeometry)
		}
		shape, err = brep.MakeCylinder(origin, up, dims[0], dims[1])
	case "sphere":
		if len(dims) != 1 {
			return nil, fmt.Errorf("%w: sphere needs radius", brep.ErrGeometry)
		}
		shape, err = brep.MakeSphere(origin, dims[0])
	case "cone":
		if len(dims) != 3 {
			return nil, fmt.Errorf("%w: cone needs baseRadius,topRadius,height", brep.ErrGeometry)
		}
		shape, err = brep.MakeCone(origin, up, dims[0], dims[1], dims[2])
	default:
		return stlio.Load(source)
	}
	if err != nil {
		return nil, err
	}
	return brep.NewExactHandle(source, shape), nil
}

func parseDims(spec string) ([]float64, error) {
	parts := strings.Split(spec, ",")
	dims := make([]float64, 0, len(parts))
	for _, p := range parts {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%g", &v); err != nil {
			return nil, err
		}
		dims = append(dims, v)
	}
	return dims, nil
}

func (s *session) properties(ctx context.Context, id string) (store.Properties, error) {
	return s.store.Properties(ctx, id)
}

func formatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

func axisName(axis int) string {
	return [...]string{"X", "Y", "Z"}[axis]
}
