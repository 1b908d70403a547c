// Package pitch implements the pitch processor kernel (spec.md §4.7
// "Pitch"): a value slider plus vibrato LFO driving a per-sample pitch
// stream, with optional arpeggio cycling through up to
// processor.ArpeggioTonesMax tones.
package pitch

import (
	"github.com/kunquat/kqsynth/internal/control"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Arpeggio holds the tones and speed of an optional arpeggio.
type Arpeggio struct {
	Tones      []float64 // semitone offsets, length <= processor.ArpeggioTonesMax
	SpeedHz    float64   // tones per second; RenderVoice does not scale it by tempo
	Enabled    bool
	toneIdx    int
	framesLeft float64
}

// Kernel is the pitch/vibrato/arpeggio processor.
type Kernel struct {
	Base     float64 // base pitch in cents or Hz-equivalent, caller-defined
	Controls *control.LinearControls
	Arp      Arpeggio
}

func New(audioRate, tempo float64) *Kernel {
	return &Kernel{Controls: control.NewLinearControls(audioRate, tempo)}
}

func (k *Kernel) Type() string     { return "pitch" }
func (k *Kernel) VStateSize() int  { return 0 }
func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	vstate.Ext = &Arpeggio{Tones: append([]float64(nil), k.Arp.Tones...), SpeedHz: k.Arp.SpeedHz, Enabled: k.Arp.Enabled}
}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	send := wbs.Send[0]
	if send == nil {
		vstate.Deactivate()
		return start
	}
	arp, _ := vstate.Ext.(*Arpeggio)
	audioRate := 48000.0
	if pstate != nil && pstate.AudioRate > 0 {
		audioRate = float64(pstate.AudioRate)
	}
	out := send.GetContents()
	for i := start; i < stop; i++ {
		v := k.Controls.Step()
		offset := 0.0
		if arp != nil && arp.Enabled && len(arp.Tones) > 0 {
			n := len(arp.Tones)
			if n > processor.ArpeggioTonesMax {
				n = processor.ArpeggioTonesMax
			}
			offset = arp.Tones[arp.toneIdx%n]
			arp.framesLeft--
			if arp.framesLeft <= 0 && arp.SpeedHz > 0 {
				arp.framesLeft = audioRate / arp.SpeedHz
				arp.toneIdx++
			}
		}
		out[i] = float32(k.Base + v + offset)
	}
	return stop
}

func (k *Kernel) SetParam(name string, value any) error {
	switch name {
	case "p_pitch_base":
		if f, ok := value.(float64); ok {
			k.Base = f
		}
	case "p_arp_enabled":
		if b, ok := value.(bool); ok {
			k.Arp.Enabled = b
		}
	}
	return nil
}
