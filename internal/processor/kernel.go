// Package processor implements the Processor device kind and the kernel
// contract concrete DSP implementations satisfy (spec.md §4.7). A Processor
// is a leaf Device whose behavior is supplied by a Kernel selected at
// project-load time by the `p_proc_type` key.
package processor

import (
	"github.com/kunquat/kqsynth/internal/buffer"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/state"
)

// WorkBuffers is the per-block set of voice-level work buffers a kernel
// reads/writes by port number, keyed by (kind, port) the same way DeviceState
// keys its audio buffers.
type WorkBuffers struct {
	Recv [64]*buffer.WorkBuffer
	Send [64]*buffer.WorkBuffer
}

// Kernel is the contract every concrete DSP implementation satisfies
// (spec.md §4.7, re-architected per §9 as a plain interface rather than the
// source's string-keyed reflection table).
type Kernel interface {
	// Type is the kernel's p_proc_type identifier (e.g. "add", "filter").
	Type() string

	// VStateSize reports required bytes for per-voice extension state; the
	// common VoiceState is always allocated regardless of this value.
	VStateSize() int

	// VStateInit initializes a voice's extension state for a new note-on.
	VStateInit(vstate *state.VoiceState, pstate *state.DeviceState)

	// RenderVoice writes output into the processor's voice-level send
	// buffers for frames [start, stop). Returns stop, or a smaller index
	// meaning the voice finished after that frame (vstate.Active must
	// already be false in that case).
	RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *WorkBuffers, start, stop int, tempo float64) int

	// SetParam applies a named parameter value (float/int/bool/envelope/
	// sample/timestamp payload; the concrete type is kernel-specific and
	// type-asserted internally). Unknown names are an error.
	SetParam(name string, value any) error
}

// MixedKernel is implemented by kernels that also operate on mixed (non-
// voice) signals, e.g. filter, panning, freeverb, stream pstate.
type MixedKernel interface {
	Kernel
	RenderMixed(dstate *state.DeviceState, wbs *WorkBuffers, start, stop int, tempo float64)
}

// Registry maps a p_proc_type string to a factory for new Kernel instances.
type Registry struct {
	factories map[string]func() Kernel
}

// NewRegistry creates an empty kernel registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Kernel)}
}

// Register installs a factory under the given p_proc_type name.
func (r *Registry) Register(procType string, factory func() Kernel) {
	r.factories[procType] = factory
}

// Create instantiates a kernel by p_proc_type name.
func (r *Registry) Create(procType string) (Kernel, error) {
	f, ok := r.factories[procType]
	if !ok {
		return nil, kqterrors.Newf("unknown processor type %q", procType).
			Component("processor").Category(kqterrors.CategoryFormat).Context("proc_type", procType).Build()
	}
	return f(), nil
}

