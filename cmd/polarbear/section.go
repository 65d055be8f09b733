package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/pkg/analysis"
	"github.com/polarbearcad/polarbear/pkg/geometry"
)

var (
	sectionAxis     string
	sectionFraction float64
	sectionOrigin   []float64
	sectionNormal   []float64
	sectionFit      bool
)

var sectionCmd = &cobra.Command{
	Use:   "section [model]",
	Short: "Cut a model with a plane and report the cross-section contours",
	Long: `Intersect the model with a section plane and print every contour with
its length and whether it is closed. The plane is given either as an
axis plus a fraction of the bounding box, or as an explicit origin and
normal.`,
	Args: cobra.ExactArgs(1),
	Run:  runSection,
}

func init() {
	rootCmd.AddCommand(sectionCmd)

	sectionCmd.Flags().StringVar(&sectionAxis, "axis", "z", "Section axis (x, y or z)")
	sectionCmd.Flags().Float64Var(&sectionFraction, "at", 0.5, "Position along the axis as a bounding-box fraction")
	sectionCmd.Flags().Float64SliceVar(&sectionOrigin, "origin", nil, "Plane origin x,y,z (overrides --axis)")
	sectionCmd.Flags().Float64SliceVar(&sectionNormal, "normal", nil, "Plane normal x,y,z (overrides --axis)")
	sectionCmd.Flags().BoolVar(&sectionFit, "fit-circle", false, "Fit a circle to each closed contour")

	sectionCmd.MarkFlagsRequiredTogether("origin", "normal")
}

func runSection(cmd *cobra.Command, args []string) {
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
	display, err := s.store.Mesh(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building display mesh: %v\n", err)
		os.Exit(1)
	}

	var cs analysis.CrossSection
	if len(sectionOrigin) == 3 && len(sectionNormal) == 3 {
		plane, err := geometry.NewPlane(
			geometry.NewVector3(sectionOrigin[0], sectionOrigin[1], sectionOrigin[2]),
			geometry.NewVector3(sectionNormal[0], sectionNormal[1], sectionNormal[2]),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cs, err = analysis.Section(ctx, snap.Handle, display, plane, snap.Tolerance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error sectioning model: %v\n", err)
			os.Exit(1)
		}
	} else {
		axis := strings.Index("xyz", strings.ToLower(sectionAxis))
		if axis < 0 {
			fmt.Fprintf(os.Stderr, "Error: unknown axis %q\n", sectionAxis)
			os.Exit(1)
		}
		cs, err = analysis.AxisSection(ctx, snap.Handle, display, axis, sectionFraction, snap.Tolerance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error sectioning model: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Cross Section")
	fmt.Println("=============")
	fmt.Printf("Plane origin: %s\n", formatVector(cs.Plane.Origin))
	fmt.Printf("Plane normal: %s\n\n", formatVector(cs.Plane.Normal))

	if cs.IsEmpty() {
		fmt.Println("The plane does not intersect the model.")
		return
	}

	fmt.Printf("Contours: %d (total length %.6f)\n", len(cs.Contours), cs.Perimeter())
	for i, c := range cs.Contours {
		kind := "open"
		if c.Closed {
			kind = "closed"
		}
		fmt.Printf("  [%d] %s, %d points, length %.6f\n", i, kind, len(c.Points), c.Length())

		if sectionFit && c.Closed {
			fit, err := cs.FitCircle(i)
			if err != nil {
				fmt.Printf("      circle fit: %v\n", err)
				continue
			}
			fmt.Printf("      circle fit: center %s radius %.6f (stddev %.6g)\n",
				formatVector(fit.Center), fit.Radius, fit.StdDev)
		}
	}
}
