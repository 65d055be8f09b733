package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/pkg/analysis"
)

var analyzeField string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [model]",
	Short: "Compute a per-vertex or per-face analysis field",
	Long: `Compute a scalar field over the display mesh and print its range.
Fields: elevation, gaussian, mean, quality. Curvature values on mesh
boundaries are numerically unstable and reported separately.`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeField, "field", "elevation", "Field to compute (elevation, gaussian, mean, quality)")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	id, err := s.open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}
	m, err := s.store.Mesh(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building display mesh: %v\n", err)
		os.Exit(1)
	}
	snap, err := s.store.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var field analysis.Field
	switch analyzeField {
	case "elevation":
		axis, err := s.cfg.Axis()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		field = analysis.Elevation(m, axis)
		fmt.Printf("Elevation along %s axis (normalized)\n", axisName(axis))
	case "gaussian":
		field = analysis.Curvature(snap.Handle, m, analysis.FieldGaussianCurvature)
		fmt.Println("Gaussian curvature")
	case "mean":
		field = analysis.Curvature(snap.Handle, m, analysis.FieldMeanCurvature)
		fmt.Println("Mean curvature")
	case "quality":
		field = analysis.Quality(m)
		fmt.Println("Triangle quality (min angle / 60 degrees)")
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown field %q\n", analyzeField)
		os.Exit(1)
	}

	samples := len(field.PerVertex)
	unit := "vertices"
	if samples == 0 {
		samples = len(field.PerFace)
		unit = "faces"
	}
	fmt.Printf("Samples: %d %s\n", samples, unit)
	fmt.Printf("Range: [%.6g, %.6g]\n", field.Min, field.Max)

	unstable := 0
	for _, u := range field.Unstable {
		if u {
			unstable++
		}
	}
	if unstable > 0 {
		fmt.Printf("Unstable samples (mesh boundary or degenerate ring): %d\n", unstable)
	}
}
