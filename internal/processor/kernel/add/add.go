// Package add implements the additive-synthesis processor kernel (spec.md
// §4.7 "add"): sums up to processor.AddTonesMax base-function copies at
// harmonic pitch multiples, with phase modulation from voice-level receive
// ports 2 and 3, and a click-suppressing ramp-attack on new voices.
package add

import (
	"math"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Tone is one harmonic copy of the base function.
type Tone struct {
	Multiplier float64 // harmonic ratio, 1.0 = fundamental
	Volume     float64 // linear gain, 0 silences the tone
	Pan        float64
}

// Kernel is the additive-synthesis processor.
type Kernel struct {
	Tones []Tone
	Pitch float64 // Hz, set per voice via the common state carried in vstate.Ext
}

// New returns a Kernel with a single unit-volume fundamental tone.
func New() *Kernel {
	return &Kernel{Tones: []Tone{{Multiplier: 1, Volume: 1, Pan: 0}}}
}

type vstateExt struct {
	phase    [processor.AddTonesMax]float64
	rampLeft int
	pitch    float64
}

func (k *Kernel) Type() string { return "add" }

func (k *Kernel) VStateSize() int { return 0 } // sized by state.VoiceState.Ext, not a raw byte count

func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	ext := &vstateExt{rampLeft: processor.RampAttackTime, pitch: k.Pitch}
	vstate.Ext = ext
}

// RenderVoice writes the summed harmonic output to send ports 0 (L) and 1
// (R), reading phase-modulation input from receive ports 2 and 3 if present.
func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	ext, ok := vstate.Ext.(*vstateExt)
	if !ok {
		vstate.Deactivate()
		return start
	}
	sendL := wbs.Send[0]
	sendR := wbs.Send[1]
	if sendL == nil || sendR == nil {
		vstate.Deactivate()
		return start
	}
	modL := wbs.Recv[2]
	modR := wbs.Recv[3]

	outL := sendL.GetContents()
	outR := sendR.GetContents()

	n := len(k.Tones)
	if n > processor.AddTonesMax {
		n = processor.AddTonesMax
	}
	audioRate := 48000.0
	if pstate != nil && pstate.AudioRate > 0 {
		audioRate = float64(pstate.AudioRate)
	}

	for i := start; i < stop; i++ {
		var sampleL, sampleR float64
		var phaseMod float64
		if modL != nil {
			phaseMod += float64(modL.GetContents()[i])
		}
		if modR != nil {
			phaseMod += float64(modR.GetContents()[i])
		}
		for t := 0; t < n; t++ {
			tone := k.Tones[t]
			if tone.Volume == 0 {
				continue
			}
			v := math.Sin(2*math.Pi*ext.phase[t] + phaseMod)
			sampleL += v * tone.Volume * (1 - tone.Pan)
			sampleR += v * tone.Volume * (1 + tone.Pan)
			ext.phase[t] += tone.Multiplier / audioRate * ext.pitch
			if ext.phase[t] >= 1 {
				ext.phase[t] -= math.Floor(ext.phase[t])
			}
		}
		if ext.rampLeft > 0 {
			ramp := 1.0 - float64(ext.rampLeft)/float64(processor.RampAttackTime)
			sampleL *= ramp
			sampleR *= ramp
			ext.rampLeft--
		}
		outL[i] = float32(sampleL)
		outR[i] = float32(sampleR)
	}
	return stop
}

func (k *Kernel) SetParam(name string, value any) error {
	switch name {
	case "p_pitch":
		f, ok := value.(float64)
		if !ok {
			return kqterrors.Newf("add: p_pitch expects float64").Component("processor/add").
				Category(kqterrors.CategoryArgument).Build()
		}
		k.Pitch = f
	default:
		return kqterrors.Newf("add: unknown parameter %q", name).Component("processor/add").
			Category(kqterrors.CategoryArgument).Context("param", name).Build()
	}
	return nil
}
