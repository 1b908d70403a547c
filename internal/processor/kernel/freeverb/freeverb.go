// Package freeverb implements the Freeverb-style reverb processor kernel
// (spec.md §4.7 "Freeverb"): a Schroeder reverb with 8 combs and 4 allpasses
// per channel, reflectivity and damping streams on receive ports 2 and 3.
package freeverb

import (
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

const (
	numCombs    = 8
	numAllpass  = 4
	allpassGain = 0.5
)

// combTunings are the classic Freeverb comb delay lengths (samples at 44100Hz);
// scaled to the runtime audio rate in New.
var combTunings = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var allpassTunings = [numAllpass]int{556, 441, 341, 225}

type comb struct {
	buf    []float32
	pos    int
	filter float32
}

func (c *comb) process(in, reflectivity, damping float32) float32 {
	out := c.buf[c.pos]
	c.filter = out*(1-damping) + c.filter*damping
	c.buf[c.pos] = in + c.filter*reflectivity
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

type allpass struct {
	buf []float32
	pos int
}

func (a *allpass) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*allpassGain
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

type channelState struct {
	combs    [numCombs]comb
	allpasses [numAllpass]allpass
}

func newChannelState(audioRate int) *channelState {
	cs := &channelState{}
	scale := float64(audioRate) / 44100.0
	for i := 0; i < numCombs; i++ {
		n := int(float64(combTunings[i]) * scale)
		if n < 1 {
			n = 1
		}
		cs.combs[i].buf = make([]float32, n)
	}
	for i := 0; i < numAllpass; i++ {
		n := int(float64(allpassTunings[i]) * scale)
		if n < 1 {
			n = 1
		}
		cs.allpasses[i].buf = make([]float32, n)
	}
	return cs
}

// Kernel is the Freeverb-style reverb, operating on mixed signals.
type Kernel struct {
	audioRate int
	ch        [2]*channelState
}

func New(audioRate int) *Kernel {
	return &Kernel{audioRate: audioRate, ch: [2]*channelState{newChannelState(audioRate), newChannelState(audioRate)}}
}

func (k *Kernel) Type() string     { return "freeverb" }
func (k *Kernel) VStateSize() int  { return 0 }
func (k *Kernel) VStateInit(*state.VoiceState, *state.DeviceState) {}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, _ *state.DeviceState, _ *processor.WorkBuffers, start, stop int, _ float64) int {
	// Freeverb is mixed-signal only; a voice-level call is a no-op.
	vstate.Deactivate()
	return start
}

func (k *Kernel) RenderMixed(_ *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) {
	reflRecv := wbs.Recv[2]
	dampRecv := wbs.Recv[3]
	for ch := 0; ch < 2; ch++ {
		recv := wbs.Recv[ch]
		send := wbs.Send[ch]
		if recv == nil || send == nil {
			continue
		}
		cs := k.ch[ch]
		in := recv.GetContents()
		out := send.GetContents()
		for i := start; i < stop; i++ {
			reflectivity := float32(0.84)
			if reflRecv != nil {
				// The reflectivity stream is clamped per sample to [0,1] and
				// used directly as the comb feedback gain; no exponent-domain
				// mapping is applied.
				r := reflRecv.GetContents()[i]
				if r < 0 {
					r = 0
				} else if r > 1 {
					r = 1
				}
				reflectivity = r
			}
			damping := float32(0.2)
			if dampRecv != nil {
				d := dampRecv.GetContents()[i]
				if d < 0 {
					d = 0
				} else if d > 1 {
					d = 1
				}
				damping = d
			}
			x := in[i]
			var sum float32
			for c := range cs.combs {
				sum += cs.combs[c].process(x, reflectivity, damping)
			}
			for a := range cs.allpasses {
				sum = cs.allpasses[a].process(sum)
			}
			out[i] = sum
		}
	}
}

func (k *Kernel) SetParam(name string, value any) error { return nil }
