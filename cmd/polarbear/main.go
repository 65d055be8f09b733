package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/version"
)

var rootCmd = &cobra.Command{
	Use:   "polarbear",
	Short: "A CLI viewer core for inspecting and editing 3D engineering models",
	Long: `polarbear loads 3D models (STL or built-in analytic primitives) and
provides sectioning, measurement, surface analysis and mesh editing.
Analytic models keep exact areas and volumes; mesh edits work on the
tessellated representation.`,
	Version: version.String(),
}

var (
	configPath string
	flagTol    float64
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "polarbear.yaml", "Path to the settings file")
	rootCmd.PersistentFlags().Float64Var(&flagTol, "tolerance", 0, "Chord deviation for display meshes (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
