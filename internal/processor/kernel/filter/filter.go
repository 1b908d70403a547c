// Package filter implements the two-pole IIR filter processor kernel
// (spec.md §4.7 "Filter"): cutoff and resonance streams on receive ports 0
// and 1, crossfading to newly computed coefficients on significant parameter
// change, with per-channel history buffers.
package filter

import (
	"math"

	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

const (
	changeThreshold = 0.01
)

type coeffs struct {
	a0, a1, a2, b1, b2 float64
}

// history is the per-channel IIR history (two poles, two samples back).
type history struct {
	x1, x2, y1, y2 float64
}

type vstateExt struct {
	hist       [2]history // up to stereo; channels beyond 2 are unsupported
	cur        coeffs
	next       coeffs
	xfadeLeft  int
	xfadeTotal int
	lastCutoff float64
	lastRes    float64
	haveCoeffs bool
}

// Kernel is the two-pole resonant filter.
type Kernel struct {
	mixed vstateExt
}

func New() *Kernel {
	return &Kernel{mixed: vstateExt{lastCutoff: math.NaN(), lastRes: math.NaN()}}
}

func (k *Kernel) Type() string     { return "filter" }
func (k *Kernel) VStateSize() int  { return 0 }

func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	vstate.Ext = &vstateExt{lastCutoff: math.NaN(), lastRes: math.NaN()}
}

// cutoffHz converts a cutoff parameter to Hz per spec.md §4.7's formula.
func cutoffHz(cutoffParam float64) float64 {
	return math.Pow(2, (cutoffParam+processor.CutoffBias)/12)
}

// computeCoeffs derives a two-pole lowpass resonant filter's coefficients
// via the standard bilinear-transform RBJ biquad form.
func computeCoeffs(cutoff, res, audioRate float64) coeffs {
	w0 := 2 * math.Pi * cutoff / audioRate
	alpha := math.Sin(w0) / (2 * math.Max(res, 0.01))
	cosw0 := math.Cos(w0)
	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return coeffs{
		a0: b0 / a0,
		a1: b1 / a0,
		a2: b2 / a0,
		b1: a1 / a0,
		b2: a2 / a0,
	}
}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	ext, ok := vstate.Ext.(*vstateExt)
	if !ok {
		vstate.Deactivate()
		return start
	}
	audioRate := 48000.0
	if pstate != nil && pstate.AudioRate > 0 {
		audioRate = float64(pstate.AudioRate)
	}
	process(ext, wbs, start, stop, audioRate)
	return stop
}

// RenderMixed applies the same two-pole filter to a mixed (non-voice) signal,
// using the Kernel's own persistent history rather than a per-voice one.
func (k *Kernel) RenderMixed(dstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) {
	audioRate := 48000.0
	if dstate != nil && dstate.AudioRate > 0 {
		audioRate = float64(dstate.AudioRate)
	}
	process(&k.mixed, wbs, start, stop, audioRate)
}

func process(ext *vstateExt, wbs *processor.WorkBuffers, start, stop int, audioRate float64) {
	cutoffRecv := wbs.Recv[0]
	resRecv := wbs.Recv[1]
	for ch := 0; ch < 2; ch++ {
		send := wbs.Send[ch]
		recv := wbs.Recv[ch]
		if send == nil || recv == nil {
			continue
		}
		in := recv.GetContents()
		out := send.GetContents()
		for i := start; i < stop; i++ {
			cutoff := cutoffHz(0)
			if cutoffRecv != nil {
				cutoff = cutoffHz(float64(cutoffRecv.GetContents()[i]))
			}
			res := 0.5
			if resRecv != nil {
				res = float64(resRecv.GetContents()[i])
			}
			if math.IsNaN(ext.lastCutoff) || math.Abs(cutoff-ext.lastCutoff) > changeThreshold || math.Abs(res-ext.lastRes) > changeThreshold {
				ext.next = computeCoeffs(math.Min(cutoff, audioRate/2*0.999), res, audioRate)
				ext.xfadeTotal = xfadeFrames(res)
				ext.xfadeLeft = ext.xfadeTotal
				ext.lastCutoff = cutoff
				ext.lastRes = res
				if !ext.haveCoeffs {
					ext.cur = ext.next
					ext.xfadeLeft = 0
					ext.haveCoeffs = true
				}
			}
			if cutoff >= audioRate/2 {
				out[i] = in[i]
				continue
			}
			h := &ext.hist[ch]
			x0 := float64(in[i])
			yCur := ext.cur.a0*x0 + ext.cur.a1*h.x1 + ext.cur.a2*h.x2 - ext.cur.b1*h.y1 - ext.cur.b2*h.y2
			y := yCur
			if ext.xfadeLeft > 0 {
				yNext := ext.next.a0*x0 + ext.next.a1*h.x1 + ext.next.a2*h.x2 - ext.next.b1*h.y1 - ext.next.b2*h.y2
				mix := 1 - float64(ext.xfadeLeft)/float64(ext.xfadeTotal)
				y = yCur*(1-mix) + yNext*mix
				ext.xfadeLeft--
				if ext.xfadeLeft == 0 {
					ext.cur = ext.next
				}
			}
			h.x2, h.x1 = h.x1, x0
			h.y2, h.y1 = h.y1, y
			out[i] = float32(y)
		}
	}
}

// xfadeFrames scales crossfade duration by resonance, per spec.md §4.7:
// FilterXfadeSpeedMax/R seconds at low resonance down to FilterXfadeSpeedMin/R
// at max resonance — so FilterXfadeSpeedMax/Min are themselves frame counts.
func xfadeFrames(res float64) int {
	res = math.Max(0, math.Min(1, res))
	n := int(processor.FilterXfadeSpeedMax - (processor.FilterXfadeSpeedMax-processor.FilterXfadeSpeedMin)*res)
	if n < 1 {
		n = 1
	}
	return n
}

func (k *Kernel) SetParam(name string, value any) error {
	return nil // filter has no static params beyond the streamed cutoff/resonance receive ports
}
