package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/polarbearcad/polarbear/pkg/stlio"
	"github.com/polarbearcad/polarbear/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file.stl]",
	Short: "Watch an STL file and report its properties after every save",
	Args:  cobra.ExactArgs(1),
	Run:   runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	path := args[0]

	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report := func(p string) {
		h, err := stlio.Load(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
			return
		}
		id, err := s.store.Load(h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
			return
		}
		defer s.store.Unload(id)

		props, err := s.properties(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
			return
		}
		fmt.Printf("[%s] %s: %d triangles, area %.6f", time.Now().Format("15:04:05"), p, props.FaceCount, props.SurfaceArea)
		if props.VolumeReliable {
			fmt.Printf(", volume %.6f", props.Volume)
		}
		fmt.Println()
	}

	// Report once up front so a broken file is noticed immediately.
	report(path)

	w, err := watcher.New(time.Duration(s.cfg.WatchDebounce) * time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Watch(path, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w.Start(func(err error) {
		fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
	})

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", path)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
