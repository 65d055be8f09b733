package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/polarbearcad/polarbear/pkg/stlio"
)

var (
	exportASCII  bool
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export [model] [output]",
	Short: "Write a model as STL or as an analytic shape descriptor",
	Long: `Write the model out. Format "stl" writes the display mesh (analytic
models are tessellated at the session tolerance first). Format "brep"
writes a YAML descriptor of the analytic shape and is refused for
mesh-only models, including models that have been edited.`,
	Args: cobra.ExactArgs(2),
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportASCII, "ascii", false, "Write ASCII STL instead of binary")
	exportCmd.Flags().StringVar(&exportFormat, "format", "stl", "Output format (stl or brep)")
}

func runExport(cmd *cobra.Command, args []string) {
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
	snap, err := s.store.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch exportFormat {
	case "stl":
		m, err := s.store.ExportMesh(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		if err := stlio.Save(args[1], m, snap.Name, !exportASCII); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing STL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d triangles to %s\n", m.FaceCount(), args[1])

	case "brep":
		shape, err := s.store.ExportExact(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		b := shape.BoundingBox()
		desc := map[string]any{
			"name":         snap.Name,
			"units":        snap.Handle.Units,
			"faces":        len(shape.Faces),
			"surface_area": shape.SurfaceArea(),
			"volume":       shape.Volume(),
			"bounds": map[string][]float64{
				"min": {b.Min.X, b.Min.Y, b.Min.Z},
				"max": {b.Max.X, b.Max.Y, b.Max.Z},
			},
		}
		data, err := yaml.Marshal(desc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding shape: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", args[1], err)
			os.Exit(1)
		}
		fmt.Printf("Wrote analytic descriptor to %s\n", args[1])

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", exportFormat)
		os.Exit(1)
	}
}

// writeOutput exports the edited model when an output path was given.
func writeOutput(ctx context.Context, s *session, id, path string) {
	if path == "" {
		return
	}
	m, err := s.store.ExportMesh(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}
	snap, err := s.store.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := stlio.Save(path, m, snap.Name, true); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing STL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
