package main

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/conf"
)

func TestToKqtOptionsCopiesEverySetting(t *testing.T) {
	s := &conf.Settings{
		Audio:  conf.AudioSettings{Rate: 96000, BufferSize: 512},
		Player: conf.PlayerSettings{PoolSize: 64, DefaultTempo: 140, DefaultVolume: 0.8, RandomSeed: 7},
	}
	opts := toKqtOptions(s)
	if opts.AudioRate != 96000 || opts.BufferSize != 512 || opts.PoolSize != 64 ||
		opts.DefaultTempo != 140 || opts.DefaultVolume != 0.8 || opts.RandomSeed != 7 {
		t.Fatalf("toKqtOptions(%+v) = %+v, fields did not round-trip", s, opts)
	}
}
