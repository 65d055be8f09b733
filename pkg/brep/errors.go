// Package brep holds the exact boundary representation side of the
// model: analytic surfaces, faces with parameter domains, and the
// primitive constructors. Shapes built here keep their exact measures
// regardless of how coarsely they are tessellated for display.
package brep

import "errors"

// Sentinel errors shared across the loading, analysis and editing
// layers. Callers wrap these with context via fmt.Errorf and %w.
var (
	// ErrUnsupportedFormat is returned when a file cannot be
	// recognized as a supported model format
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrGeometry is returned when geometry is degenerate or
	// inconsistent and the requested operation cannot proceed
	ErrGeometry = errors.New("invalid geometry")

	// ErrToleranceUnreachable is returned when an operation cannot
	// satisfy the requested accuracy bound
	ErrToleranceUnreachable = errors.New("tolerance unreachable")

	// ErrStaleResult is returned when a computation finished against
	// a model state that has since been replaced
	ErrStaleResult = errors.New("stale result")

	// ErrNotExportable is returned when a model has no representation
	// suitable for the requested export
	ErrNotExportable = errors.New("model not exportable")
)
