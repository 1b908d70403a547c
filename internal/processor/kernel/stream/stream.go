// Package stream implements the stream processor kernel (spec.md §4.7
// "Stream"): exposes a Linear_controls as a processor output, usable both as
// a mixed-signal whole-unit parameter source and as a per-voice vstate
// carried via channel cv-state.
package stream

import (
	"github.com/kunquat/kqsynth/internal/control"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Kernel streams a Linear_controls value to its send port.
type Kernel struct {
	Controls *control.LinearControls
}

func New(audioRate, tempo float64) *Kernel {
	return &Kernel{Controls: control.NewLinearControls(audioRate, tempo)}
}

func (k *Kernel) Type() string    { return "stream" }
func (k *Kernel) VStateSize() int { return 0 }

func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	vstate.Ext = k.Controls.Clone()
}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, _ *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	c, ok := vstate.Ext.(*control.LinearControls)
	send := wbs.Send[0]
	if !ok || send == nil {
		vstate.Deactivate()
		return start
	}
	c.FillWorkBuffer(send, start, stop)
	return stop
}

// RenderMixed streams the whole-unit (mixed-signal) controls value.
func (k *Kernel) RenderMixed(_ *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) {
	if send := wbs.Send[0]; send != nil {
		k.Controls.FillWorkBuffer(send, start, stop)
	}
}

func (k *Kernel) SetParam(name string, value any) error {
	switch name {
	case "p_value":
		if f, ok := value.(float64); ok {
			k.Controls.SetValue(f)
		}
	}
	return nil
}
