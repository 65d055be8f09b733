package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/internal/controller"
	"github.com/polarbearcad/polarbear/internal/worker"
	"github.com/polarbearcad/polarbear/pkg/analysis"
	"github.com/polarbearcad/polarbear/pkg/geometry"
)

var viewCmd = &cobra.Command{
	Use:   "view [model]",
	Short: "Interactively section, measure and analyze a model",
	Long: `Open an interactive session on a model. Commands are read from stdin,
one per line:

  tool idle|section|measure|pick|analyze
  clip <axis> <fraction>        set a section plane
  unclip                        remove the section plane
  field elevation|gaussian|mean|quality
  pick <ox> <oy> <oz> <dx> <dy> <dz>   cast a pick ray
  tolerance <chord deviation>
  simplify <target> <deviation>
  subdivide <levels> [smooth]
  crop <minx> <miny> <minz> <maxx> <maxy> <maxz>
  frame                         print the current frame
  quit`,
	Args: cobra.ExactArgs(1),
	Run:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) {
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

	axis, err := s.cfg.Axis()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctrl := controller.New(s.store, worker.NewPool(s.cfg.Workers))
	ctrl.SetUpAxis(axis)
	if err := ctrl.SetActiveModel(ctx, id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printFrame(ctrl.Render())
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line != "" {
			if err := viewCommand(ctx, ctrl, line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
		fmt.Print("> ")
	}
}

func viewCommand(ctx context.Context, ctrl *controller.Controller, line string) error {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "tool":
		if len(rest) != 1 {
			return fmt.Errorf("usage: tool idle|section|measure|pick|analyze")
		}
		tool, err := parseTool(rest[0])
		if err != nil {
			return err
		}
		ctrl.SelectTool(tool)

	case "clip":
		if len(rest) != 2 {
			return fmt.Errorf("usage: clip <axis> <fraction>")
		}
		axis := strings.Index("xyz", strings.ToLower(rest[0]))
		if axis < 0 {
			return fmt.Errorf("unknown axis %q", rest[0])
		}
		fraction, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return err
		}
		frame := ctrl.Render()
		if frame.Mesh == nil {
			return fmt.Errorf("no display mesh yet")
		}
		b := frame.Mesh.BoundingBox()
		through := b.Min.Lerp(b.Max, fraction)
		ctrl.SetClipPlane(ctx, geometry.AxisPlane(axis, through))
		if err := ctrl.Flush(ctx); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "unclip":
		ctrl.ClearClipPlane()

	case "field":
		if len(rest) != 1 {
			return fmt.Errorf("usage: field elevation|gaussian|mean|quality")
		}
		kind, err := parseFieldKind(rest[0])
		if err != nil {
			return err
		}
		ctrl.SetField(ctx, kind)
		if err := ctrl.Flush(ctx); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "pick":
		if len(rest) != 6 {
			return fmt.Errorf("usage: pick <ox> <oy> <oz> <dx> <dy> <dz>")
		}
		v, err := parseFloats(rest)
		if err != nil {
			return err
		}
		ray := geometry.NewRay(
			geometry.NewVector3(v[0], v[1], v[2]),
			geometry.NewVector3(v[3], v[4], v[5]),
		)
		pick, hit, err := ctrl.Pick(ctx, ray, 0.05)
		if err != nil {
			return err
		}
		if !hit {
			fmt.Println("no hit")
			return nil
		}
		fmt.Printf("hit %s (face %d, vertex %d)\n", formatVector(pick.Point), pick.FaceIndex, pick.VertexIndex)
		if ctrl.PendingMeasurement() {
			fmt.Println("pick the second point to measure")
		}
		printFrame(ctrl.Render())

	case "tolerance":
		if len(rest) != 1 {
			return fmt.Errorf("usage: tolerance <chord deviation>")
		}
		tol, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return err
		}
		if err := ctrl.SetTolerance(ctx, tol); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "simplify":
		if len(rest) != 2 {
			return fmt.Errorf("usage: simplify <target> <deviation>")
		}
		target, err := strconv.Atoi(rest[0])
		if err != nil {
			return err
		}
		deviation, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return err
		}
		if err := ctrl.Simplify(ctx, target, deviation); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "subdivide":
		if len(rest) < 1 {
			return fmt.Errorf("usage: subdivide <levels> [smooth]")
		}
		levels, err := strconv.Atoi(rest[0])
		if err != nil {
			return err
		}
		smooth := len(rest) > 1 && rest[1] == "smooth"
		if err := ctrl.Subdivide(ctx, levels, smooth); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "crop":
		if len(rest) != 6 {
			return fmt.Errorf("usage: crop <minx> <miny> <minz> <maxx> <maxy> <maxz>")
		}
		v, err := parseFloats(rest)
		if err != nil {
			return err
		}
		box := geometry.NewBoundingBoxFromCorners(
			geometry.NewVector3(v[0], v[1], v[2]),
			geometry.NewVector3(v[3], v[4], v[5]),
		)
		if err := ctrl.Crop(ctx, box); err != nil {
			return err
		}
		printFrame(ctrl.Render())

	case "frame":
		printFrame(ctrl.Render())

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func parseTool(name string) (controller.Tool, error) {
	switch name {
	case "idle":
		return controller.ToolIdle, nil
	case "section":
		return controller.ToolSection, nil
	case "measure":
		return controller.ToolMeasure, nil
	case "pick":
		return controller.ToolPick, nil
	case "analyze":
		return controller.ToolAnalyze, nil
	}
	return controller.ToolIdle, fmt.Errorf("unknown tool %q", name)
}

func parseFieldKind(name string) (analysis.FieldKind, error) {
	switch name {
	case "elevation":
		return analysis.FieldElevation, nil
	case "gaussian":
		return analysis.FieldGaussianCurvature, nil
	case "mean":
		return analysis.FieldMeanCurvature, nil
	case "quality":
		return analysis.FieldQuality, nil
	}
	return analysis.FieldElevation, fmt.Errorf("unknown field %q", name)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func printFrame(f controller.Frame) {
	fmt.Printf("frame: gen %d, tool %s", f.Generation, f.Tool)
	if f.Mesh != nil {
		fmt.Printf(", %d triangles", f.Mesh.FaceCount())
	}
	if f.Section != nil && !f.Section.IsEmpty() {
		fmt.Printf(", section %d contours (length %.4f)", len(f.Section.Contours), f.Section.Perimeter())
	}
	if f.Measurement != nil {
		fmt.Printf(", measured %.6f", f.Measurement.Distance)
	}
	if f.Field != nil {
		fmt.Printf(", field %s [%.4g, %.4g]", f.Field.Kind, f.Field.Min, f.Field.Max)
	}
	fmt.Println()
}
