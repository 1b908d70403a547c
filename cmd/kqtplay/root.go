package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kunquat/kqsynth/internal/conf"
)

// buildRootCommand wires the play/validate/bench subcommands the same way
// the teacher's cmd.RootCommand wires its own subpackages, collapsed into
// one cmd/kqtplay binary since this engine's CLI surface is much smaller.
func buildRootCommand(settings *conf.Settings) *cobra.Command {
	root := &cobra.Command{
		Use:   "kqtplay",
		Short: "Kunquat project loader and audio renderer",
	}

	root.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "enable debug logging")
	root.PersistentFlags().IntVar(&settings.Audio.Rate, "rate", viper.GetInt("audio.rate"), "audio mixing rate in samples/second")
	root.PersistentFlags().IntVar(&settings.Audio.BufferSize, "buffer", viper.GetInt("audio.buffer_size"), "frames rendered per Mix call")
	if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}

	root.AddCommand(
		newValidateCmd(settings),
		newPlayCmd(settings),
		newBenchCmd(settings),
	)
	return root
}
