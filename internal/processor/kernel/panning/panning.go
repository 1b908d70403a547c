// Package panning implements the panning processor kernel (spec.md §4.7
// "Panning"): a per-sample pan parameter in [-1, 1] scaling L by 1-pan and R
// by 1+pan.
package panning

import (
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Kernel applies stereo panning to its receive ports.
type Kernel struct{}

func New() *Kernel { return &Kernel{} }

func (k *Kernel) Type() string     { return "panning" }
func (k *Kernel) VStateSize() int  { return 0 }
func (k *Kernel) VStateInit(*state.VoiceState, *state.DeviceState) {}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, tempo float64) int {
	k.render(wbs, start, stop)
	return stop
}

func (k *Kernel) RenderMixed(_ *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) {
	k.render(wbs, start, stop)
}

func (k *Kernel) render(wbs *processor.WorkBuffers, start, stop int) {
	recvL, recvR := wbs.Recv[0], wbs.Recv[1]
	sendL, sendR := wbs.Send[0], wbs.Send[1]
	panRecv := wbs.Recv[2]
	if recvL == nil || recvR == nil || sendL == nil || sendR == nil {
		return
	}
	inL, inR := recvL.GetContents(), recvR.GetContents()
	outL, outR := sendL.GetContents(), sendR.GetContents()
	for i := start; i < stop; i++ {
		pan := 0.0
		if panRecv != nil {
			pan = float64(panRecv.GetContents()[i])
			if pan < -1 {
				pan = -1
			} else if pan > 1 {
				pan = 1
			}
		}
		outL[i] = float32(float64(inL[i]) * (1 - pan))
		outR[i] = float32(float64(inR[i]) * (1 + pan))
	}
}

func (k *Kernel) SetParam(name string, value any) error { return nil }
