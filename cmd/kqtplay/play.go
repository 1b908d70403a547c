package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kunquat/kqsynth/internal/conf"
	"github.com/kunquat/kqsynth/pkg/kqt"
)

const outChannels = 2

func newPlayCmd(settings *conf.Settings) *cobra.Command {
	var outPath string
	var maxSeconds float64

	cmd := &cobra.Command{
		Use:   "play <project-dir>",
		Short: "Render a project to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(settings, args[0], outPath, maxSeconds)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "out.wav", "output WAV file path")
	cmd.Flags().Float64Var(&maxSeconds, "max-seconds", 60, "stop rendering after this many seconds even if playback has not ended")
	return cmd
}

func runPlay(settings *conf.Settings, dir, outPath string, maxSeconds float64) error {
	project, err := loadProject(dir, newFileCache())
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

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	bufSize := settings.Audio.BufferSize
	ww := newWavWriter(out, h.GetMixingRate(), outChannels, bufSize)

	maxFrames := int(maxSeconds * float64(h.GetMixingRate()))
	rendered := 0
	for rendered < maxFrames {
		want := bufSize
		if rendered+want > maxFrames {
			want = maxFrames - rendered
		}
		mixed, err := h.Mix(want)
		if err != nil {
			return fmt.Errorf("mix: %w (%s)", err, h.GetError())
		}
		if mixed == 0 {
			break
		}

		perChannel := make([][]float32, outChannels)
		for ch := 0; ch < outChannels; ch++ {
			perChannel[ch] = h.GetBuffer(ch)[:mixed]
		}
		if err := ww.WriteBlock(perChannel); err != nil {
			return fmt.Errorf("writing wav block: %w", err)
		}

		rendered += mixed
		if mixed < want {
			break // playback ended before filling the block
		}
	}

	if err := ww.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}

	fmt.Printf("%s: rendered %.2fs to %s\n", dir, float64(rendered)/float64(h.GetMixingRate()), outPath)
	return nil
}
