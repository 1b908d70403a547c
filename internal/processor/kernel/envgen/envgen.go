// Package envgen implements the envelope-generator processor kernel (spec.md
// §4.7 "Envelope generator"): evaluates a time envelope scaled by (pitch,
// amount, center), optionally in the linear-force domain with a
// force-to-scale envelope and a global dB adjust.
package envgen

import (
	"math"

	"github.com/kunquat/kqsynth/internal/envelope"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Kernel is the time-envelope generator.
type Kernel struct {
	Env           *envelope.Envelope
	ScaleEnv      *envelope.Envelope // optional force->scale envelope
	IsLinearForce bool
	GlobalAdjust  float64 // dB
	PitchDiff     float64
	Amount        float64
	YMin, YMax    float64
}

func New(env *envelope.Envelope) *Kernel {
	return &Kernel{Env: env, YMin: 0, YMax: 1}
}

type vstateExt struct {
	cursor *envelope.TimeEnvState
}

func (k *Kernel) Type() string    { return "envgen" }
func (k *Kernel) VStateSize() int { return 0 }

func (k *Kernel) VStateInit(vstate *state.VoiceState, _ *state.DeviceState) {
	vstate.Ext = &vstateExt{cursor: envelope.NewTimeEnvState(k.Env)}
}

func (k *Kernel) RenderVoice(vstate *state.VoiceState, pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int, _ float64) int {
	ext, ok := vstate.Ext.(*vstateExt)
	if !ok {
		vstate.Deactivate()
		return start
	}
	send := wbs.Send[0]
	if send == nil {
		vstate.Deactivate()
		return start
	}
	audioRate := 48000.0
	if pstate != nil && pstate.AudioRate > 0 {
		audioRate = float64(pstate.AudioRate)
	}
	timeScale := envelope.TimeScale(k.PitchDiff, k.Amount)
	newStop := ext.cursor.Process(send, start, stop, audioRate, timeScale)

	out := send.GetContents()
	for i := start; i < newStop; i++ {
		raw := float64(out[i])
		var y float64
		if k.IsLinearForce {
			linear := raw
			if k.ScaleEnv != nil {
				linear *= k.ScaleEnv.ValueAt(raw)
			}
			db := 20 * math.Log10(math.Max(linear, 1e-9))
			y = db + k.GlobalAdjust
		} else {
			y = k.YMin + raw*(k.YMax-k.YMin)
		}
		out[i] = float32(y)
	}
	if ext.cursor.IsFinished() {
		vstate.Deactivate()
	}
	return newStop
}

func (k *Kernel) SetParam(name string, value any) error {
	switch name {
	case "p_global_adjust":
		if f, ok := value.(float64); ok {
			k.GlobalAdjust = f
		}
	case "p_linear_force":
		if b, ok := value.(bool); ok {
			k.IsLinearForce = b
		}
	}
	return nil
}
