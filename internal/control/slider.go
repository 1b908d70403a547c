// Package control implements the continuous parameter primitives described in
// spec.md §4.2: Slider, LFO, and the composed Linear_controls stream.
package control

import (
	"math"

	"github.com/kunquat/kqsynth/internal/tstamp"
)

// SlideMode selects how a Slider interpolates toward its target.
type SlideMode int

const (
	SlideLinear SlideMode = iota
	SlideExponential
)

// Slider slides a scalar from its current value to a target over a duration
// expressed in Tstamp units (spec.md §4.2).
type Slider struct {
	mode       SlideMode
	audioRate  float64
	tempo      float64
	value      float64
	target     float64
	stepsLeft  int64
	totalSteps int64
	// for exponential mode, the per-step multiplicative factor
	expFactor float64
}

// NewSlider creates a Slider holding the value 0 with no slide in progress;
// callers set a starting value with SetValue.
func NewSlider(audioRate, tempo float64) *Slider {
	return &Slider{audioRate: audioRate, tempo: tempo}
}

// Value returns the slider's current value.
func (s *Slider) Value() float64 { return s.value }

// SetValue jumps the value immediately, cancelling any in-progress slide.
func (s *Slider) SetValue(v float64) {
	s.value = v
	s.target = v
	s.stepsLeft = 0
	s.totalSteps = 0
}

// SetTempo rescales the remaining slide duration to the new tempo, following
// spec.md §4.2's length_in_samples formula.
func (s *Slider) SetTempo(tempo float64) {
	if tempo <= 0 || s.tempo <= 0 || s.stepsLeft <= 0 {
		s.tempo = tempo
		return
	}
	ratio := s.tempo / tempo
	s.stepsLeft = int64(float64(s.stepsLeft)*ratio + 0.5)
	s.tempo = tempo
}

// SetAudioRate rescales the remaining slide duration to the new rate.
func (s *Slider) SetAudioRate(rate float64) {
	if rate <= 0 || s.audioRate <= 0 || s.stepsLeft <= 0 {
		s.audioRate = rate
		return
	}
	ratio := s.audioRate / rate
	s.stepsLeft = int64(float64(s.stepsLeft)*ratio + 0.5)
	s.audioRate = rate
}

// Slide begins a slide to target over length (a Tstamp duration), in mode m.
func (s *Slider) Slide(target float64, length tstamp.Tstamp, m SlideMode) {
	frames := length.Frames(s.audioRate, s.tempo)
	s.mode = m
	s.target = target
	if frames <= 0 {
		s.value = target
		s.stepsLeft = 0
		s.totalSteps = 0
		return
	}
	s.stepsLeft = frames
	s.totalSteps = frames
	if m == SlideExponential {
		if s.value == 0 {
			s.value = 1e-9 // avoid log(0); matches a silent-floor convention
		}
		ratio := target / s.value
		if ratio <= 0 {
			ratio = 1
		}
		s.expFactor = math.Pow(ratio, 1.0/float64(frames))
	}
}

// InProgress reports whether the slider is currently sliding (not held).
func (s *Slider) InProgress() bool { return s.stepsLeft > 0 }

// Step advances one sample and returns the new value.
func (s *Slider) Step() float64 {
	if s.stepsLeft <= 0 {
		s.value = s.target
		return s.value
	}
	switch s.mode {
	case SlideExponential:
		s.value *= s.expFactor
	default:
		remainingDelta := s.target - s.value
		s.value += remainingDelta / float64(s.stepsLeft)
	}
	s.stepsLeft--
	if s.stepsLeft == 0 {
		s.value = s.target
	}
	return s.value
}
