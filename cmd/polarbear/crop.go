package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/pkg/geometry"
)

var (
	cropMin    []float64
	cropMax    []float64
	cropOutput string
)

var cropCmd = &cobra.Command{
	Use:   "crop [model]",
	Short: "Keep only the part of the model inside an axis-aligned box",
	Long: `Clip the display mesh against an axis-aligned box. Openings cut into a
closed mesh are capped so the result stays closed. The edited model
loses its analytic surfaces.`,
	Args: cobra.ExactArgs(1),
	Run:  runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().Float64SliceVar(&cropMin, "min", nil, "Box minimum corner x,y,z")
	cropCmd.Flags().Float64SliceVar(&cropMax, "max", nil, "Box maximum corner x,y,z")
	cropCmd.Flags().StringVarP(&cropOutput, "output", "o", "", "Write the result to an STL file")

	cropCmd.MarkFlagRequired("min")
	cropCmd.MarkFlagRequired("max")
}

func runCrop(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if len(cropMin) != 3 || len(cropMax) != 3 {
		fmt.Fprintln(os.Stderr, "Error: --min and --max need three coordinates each")
		os.Exit(1)
	}

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

	box := geometry.NewBoundingBoxFromCorners(
		geometry.NewVector3(cropMin[0], cropMin[1], cropMin[2]),
		geometry.NewVector3(cropMax[0], cropMax[1], cropMax[2]),
	)

	if err := s.store.Crop(ctx, id, box); err != nil {
		fmt.Fprintf(os.Stderr, "Error cropping: %v\n", err)
		os.Exit(1)
	}

	props, err := s.properties(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cropped to %d triangles\n", props.FaceCount)
	if props.VolumeReliable {
		fmt.Printf("Remaining volume: %.6f cubic units\n", props.Volume)
	}

	writeOutput(ctx, s, id, cropOutput)
}
