package main

import (
	"github.com/kunquat/kqsynth/internal/conf"
	"github.com/kunquat/kqsynth/pkg/kqt"
)

// toKqtOptions translates loaded Settings into kqt.Options, the one place
// config-file concerns cross into the otherwise I/O-free pkg/kqt package.
func toKqtOptions(s *conf.Settings) kqt.Options {
	return kqt.Options{
		AudioRate:     s.Audio.Rate,
		BufferSize:    s.Audio.BufferSize,
		PoolSize:      s.Player.PoolSize,
		DefaultTempo:  s.Player.DefaultTempo,
		DefaultVolume: s.Player.DefaultVolume,
		RandomSeed:    s.Player.RandomSeed,
	}
}
