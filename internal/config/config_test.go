package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Precision != "medium" {
		t.Errorf("Expected precision medium, got %q", cfg.Precision)
	}
	tol, err := cfg.DisplayTolerance()
	if err != nil {
		t.Fatalf("DisplayTolerance failed: %v", err)
	}
	if math.Abs(tol-tessellate.PrecisionMedium) > 1e-12 {
		t.Errorf("Expected medium preset tolerance, got %f", tol)
	}
	axis, err := cfg.Axis()
	if err != nil {
		t.Fatalf("Axis failed: %v", err)
	}
	if axis != 2 {
		t.Errorf("Expected up axis z (2), got %d", axis)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polarbear.yaml")
	data := "precision: high\nup_axis: y\nworkers: 3\nwatch_debounce_ms: 100\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tol, _ := cfg.DisplayTolerance()
	if math.Abs(tol-tessellate.PrecisionHigh) > 1e-12 {
		t.Errorf("Expected high preset tolerance, got %f", tol)
	}
	axis, _ := cfg.Axis()
	if axis != 1 {
		t.Errorf("Expected up axis y (1), got %d", axis)
	}
	if cfg.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.Workers)
	}
	if cfg.WatchDebounce != 100 {
		t.Errorf("Expected 100ms debounce, got %d", cfg.WatchDebounce)
	}
}

func TestExplicitToleranceOverridesPreset(t *testing.T) {
	cfg := Default()
	cfg.Precision = "low"
	cfg.Tolerance = 0.015

	tol, err := cfg.DisplayTolerance()
	if err != nil {
		t.Fatalf("DisplayTolerance failed: %v", err)
	}
	if math.Abs(tol-0.015) > 1e-12 {
		t.Errorf("Expected explicit tolerance 0.015, got %f", tol)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"precision": "precision: ultra\n",
		"axis":      "up_axis: w\n",
		"workers":   "workers: -2\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("Expected error for %s config", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	want := Default()
	want.Precision = "high"
	want.Workers = 2
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Precision != want.Precision || got.Workers != want.Workers {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, want)
	}
}
