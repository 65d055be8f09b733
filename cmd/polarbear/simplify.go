package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	simplifyTarget    int
	simplifyDeviation float64
	simplifyOutput    string
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [model]",
	Short: "Reduce the triangle count within a deviation bound",
	Long: `Collapse short edges until the mesh has at most the target number of
triangles. Collapses that would move the surface further than the
deviation bound are rejected; if no admissible collapse remains before
the target is reached, the command fails and the model is unchanged.
The edited model loses its analytic surfaces.`,
	Args: cobra.ExactArgs(1),
	Run:  runSimplify,
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	simplifyCmd.Flags().IntVar(&simplifyTarget, "target", 0, "Target triangle count")
	simplifyCmd.Flags().Float64Var(&simplifyDeviation, "deviation", 0, "Maximum surface deviation")
	simplifyCmd.Flags().StringVarP(&simplifyOutput, "output", "o", "", "Write the result to an STL file")

	simplifyCmd.MarkFlagRequired("target")
	simplifyCmd.MarkFlagRequired("deviation")
}

func runSimplify(cmd *cobra.Command, args []string) {
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

	before, err := s.store.Mesh(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building display mesh: %v\n", err)
		os.Exit(1)
	}
	faces := before.FaceCount()

	if err := s.store.Simplify(ctx, id, simplifyTarget, simplifyDeviation); err != nil {
		fmt.Fprintf(os.Stderr, "Error simplifying: %v\n", err)
		os.Exit(1)
	}

	after, err := s.store.Mesh(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Simplified %d -> %d triangles (deviation bound %g)\n",
		faces, after.FaceCount(), simplifyDeviation)

	writeOutput(ctx, s, id, simplifyOutput)
}
