package envelope

import (
	"math"

	"github.com/kunquat/kqsynth/internal/buffer"
)

// TimeEnvState is a cursor into an Envelope driven by elapsed time scaled by
// (pitch, amount, center) per spec.md §4.3.
type TimeEnvState struct {
	env        *Envelope
	pos        float64
	isFinished bool
	lastValue  float64
	loopPos    float64
}

// NewTimeEnvState starts a cursor at position 0 over env.
func NewTimeEnvState(env *Envelope) *TimeEnvState {
	return &TimeEnvState{env: env}
}

// IsFinished reports whether a non-looping envelope has reached its end.
func (s *TimeEnvState) IsFinished() bool { return s.isFinished }

// LastValue returns the most recently emitted value.
func (s *TimeEnvState) LastValue() float64 { return s.lastValue }

// TimeScale computes 2^(pitchDiff*amount/1200), the per-block time-dilation
// factor spec.md §4.3 applies to envelope advancement.
func TimeScale(pitchDiff, amount float64) float64 {
	return math.Pow(2, pitchDiff*amount/1200)
}

// Process advances the envelope by (bufLen/audioRate)*timeScale, writing
// values into wb for [start, stop) and returning the index where it stopped
// (less than stop if the envelope's end was reached mid-block).
func (s *TimeEnvState) Process(wb *buffer.WorkBuffer, start, stop int, audioRate, timeScale float64) int {
	if s.isFinished || audioRate <= 0 {
		out := wb.GetContents()
		for i := start; i < stop; i++ {
			out[i] = float32(s.lastValue)
		}
		return stop
	}

	out := wb.GetContents()
	step := timeScale / audioRate
	i := start
	for ; i < stop; i++ {
		if s.pos > s.env.Length() {
			if s.env.HasLoop() {
				loopLen := s.env.Nodes[s.env.LoopEnd].X - s.env.Nodes[s.env.LoopStart].X
				if loopLen <= 0 {
					s.pos = s.env.Nodes[s.env.LoopStart].X
				} else {
					over := s.pos - s.env.Nodes[s.env.LoopStart].X
					s.pos = s.env.Nodes[s.env.LoopStart].X + math.Mod(over, loopLen)
				}
			} else {
				s.isFinished = true
				s.lastValue = s.env.ValueAt(s.env.Length())
				out[i] = float32(s.lastValue)
				return i + 1
			}
		}
		s.lastValue = s.env.ValueAt(s.pos)
		out[i] = float32(s.lastValue)
		s.pos += step
	}
	return i
}
