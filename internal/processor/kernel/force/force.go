// Package force implements the force processor kernel (spec.md §4.7
// "Force"): applies a time envelope (attack/sustain) and, on note-off, a
// release envelope with an optional release ramp.
package force

import (
	"github.com/kunquat/kqsynth/internal/envelope"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Kernel is the force/volume envelope processor.
type Kernel struct {
	AttackEnv  *envelope.Envelope
	ReleaseEnv *envelope.Envelope
	ReleaseRamp bool
}

func New(attack *envelope.Envelope) *Kernel {
	return &Kernel{AttackEnv: attack}
}

type vstateExt struct {
	attack  *envelope.TimeEnvState
	release *envelope.TimeEnvState
	releasing bool
}

func (k *Kernel) Type() string    { return "force" }
func (k *Kernel) VStateSize() int { return 0 }

func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	vstate.Ext = &vstateExt{attack: envelope.NewTimeEnvState(k.AttackEnv)}
}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	ext, ok := vstate.Ext.(*vstateExt)
	send := wbs.Send[0]
	if !ok || send == nil {
		vstate.Deactivate()
		return start
	}
	audioRate := 48000.0
	if pstate != nil && pstate.AudioRate > 0 {
		audioRate = float64(pstate.AudioRate)
	}

	if !vstate.NoteOn && k.ReleaseEnv != nil && !ext.releasing {
		ext.releasing = true
		ext.release = envelope.NewTimeEnvState(k.ReleaseEnv)
	}

	var newStop int
	if ext.releasing && ext.release != nil {
		newStop = ext.release.Process(send, start, stop, audioRate, 1.0)
		if ext.release.IsFinished() {
			vstate.Deactivate()
		}
	} else {
		newStop = ext.attack.Process(send, start, stop, audioRate, 1.0)
		if newStop < stop {
			// Past the attack envelope's end: hold its last value (sustain).
			newStop = ext.attack.Process(send, newStop, stop, audioRate, 1.0)
		}
	}
	return newStop
}

func (k *Kernel) SetParam(name string, value any) error { return nil }
