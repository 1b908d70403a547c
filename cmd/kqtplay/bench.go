package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunquat/kqsynth/internal/conf"
	"github.com/kunquat/kqsynth/pkg/kqt"
)

func newBenchCmd(settings *conf.Settings) *cobra.Command {
	var iterations int

	cmd := &cobra.Command{
		Use:   "bench <project-dir>",
		Short: "Measure Mix() throughput for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				return fmt.Errorf("iterations must be >= 1, got %d", iterations)
			}
			return runBench(settings, args[0], iterations)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "number of Mix() calls to time")
	return cmd
}

func runBench(settings *conf.Settings, dir string, iterations int) error {
	cache := newFileCache()
	project, err := loadProject(dir, cache)
	if err != nil {
		return err
	}

	h := kqt.NewHandle(toKqtOptions(settings))
	if err := applyProject(h, project); err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w (%s)", err, h.GetError())
	}

	bufSize := settings.Audio.BufferSize
	start := time.Now()
	var totalFrames int
	for i := 0; i < iterations; i++ {
		mixed, err := h.Mix(bufSize)
		if err != nil {
			return fmt.Errorf("mix: %w (%s)", err, h.GetError())
		}
		totalFrames += mixed
		if mixed < bufSize {
			break // playback ended; restart position for another pass isn't
			// modeled here since PlayModeOncePattern/exhausted tracks don't
			// rewind on their own.
		}
	}
	elapsed := time.Since(start)

	realSeconds := float64(totalFrames) / float64(h.GetMixingRate())
	fmt.Printf("Method         Mix Time    Frames Mixed  Throughput\n")
	fmt.Printf("─────────────  ──────────  ────────────  ──────────────────────\n")
	fmt.Printf("kqtplay        %6.1f ms   %10d    %6.2fx real-time\n",
		float64(elapsed.Microseconds())/1000, totalFrames, realSeconds/elapsed.Seconds())

	return nil
}
