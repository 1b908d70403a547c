// Package builtin wires the concrete DSP kernels (spec.md §4.7) into a
// processor.Registry. Kept separate from internal/processor to avoid an
// import cycle: the kernel subpackages depend on internal/processor's types,
// so only a package above both can reference them all.
package builtin

import (
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/processor/kernel/add"
	"github.com/kunquat/kqsynth/internal/processor/kernel/envgen"
	"github.com/kunquat/kqsynth/internal/processor/kernel/filter"
	"github.com/kunquat/kqsynth/internal/processor/kernel/force"
	"github.com/kunquat/kqsynth/internal/processor/kernel/freeverb"
	"github.com/kunquat/kqsynth/internal/processor/kernel/panning"
	"github.com/kunquat/kqsynth/internal/processor/kernel/pitch"
	"github.com/kunquat/kqsynth/internal/processor/kernel/stream"
)

// Register installs the built-in kernel set into reg.
func Register(reg *processor.Registry, audioRate int, tempo float64) {
	reg.Register("add", func() processor.Kernel { return add.New() })
	reg.Register("filter", func() processor.Kernel { return filter.New() })
	reg.Register("envgen", func() processor.Kernel { return envgen.New(nil) })
	reg.Register("pitch", func() processor.Kernel { return pitch.New(float64(audioRate), tempo) })
	reg.Register("stream", func() processor.Kernel { return stream.New(float64(audioRate), tempo) })
	reg.Register("panning", func() processor.Kernel { return panning.New() })
	reg.Register("force", func() processor.Kernel { return force.New(nil) })
	reg.Register("freeverb", func() processor.Kernel { return freeverb.New(audioRate) })
}

// Default returns a registry pre-populated with the built-in kernel set.
func Default(audioRate int, tempo float64) *processor.Registry {
	reg := processor.NewRegistry()
	Register(reg, audioRate, tempo)
	return reg
}
