package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [model]",
	Short: "Display geometric properties of a model",
	Long: `Show representation kind, mesh statistics, bounding box, surface area
and volume. For analytic models the area and volume are exact; for
mesh models the volume is only reported when the mesh is closed.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
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
	props, err := s.properties(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing properties: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Model Information")
	fmt.Println("=================")
	fmt.Printf("Name: %s\n", snap.Name)
	fmt.Printf("Representation: %s\n", snap.Handle.Kind)
	fmt.Printf("Units: %s\n", snap.Handle.Units)
	fmt.Printf("Display tolerance: %g\n\n", snap.Tolerance)

	fmt.Println("Mesh Statistics:")
	fmt.Printf("  Vertices: %d\n", props.VertexCount)
	fmt.Printf("  Triangles: %d\n\n", props.FaceCount)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", formatVector(props.Bounds.Min))
	fmt.Printf("  Max: %s\n", formatVector(props.Bounds.Max))
	fmt.Printf("  Center: %s\n", formatVector(props.Bounds.Center()))
	size := props.Bounds.Size()
	fmt.Printf("  Size: %s\n\n", formatVector(size))

	exactness := "from mesh"
	if props.Exact {
		exactness = "exact"
	}
	fmt.Println("Measures:")
	fmt.Printf("  Surface Area: %.6f square units (%s)\n", props.SurfaceArea, exactness)
	if props.VolumeReliable {
		fmt.Printf("  Volume: %.6f cubic units (%s)\n", props.Volume, exactness)
	} else {
		fmt.Println("  Volume: not available (mesh is open)")
	}
	fmt.Printf("  Centroid: %s\n", formatVector(props.Centroid))
}
