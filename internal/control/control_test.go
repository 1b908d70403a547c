package control

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/tstamp"
	"github.com/stretchr/testify/assert"
)

func TestSliderLinearReachesTargetExactlyAtEndpoint(t *testing.T) {
	// Scenario F: volume slider over 4 beats at 120 BPM / 48000 Hz.
	s := NewSlider(48000, 120)
	s.SetValue(0.0)
	length := tstamp.New(4, 0)
	s.Slide(1.0, length, SlideLinear)

	frames := length.Frames(48000, 120)
	var last float64
	for i := int64(0); i < frames; i++ {
		last = s.Step()
	}
	assert.InDelta(t, 1.0, last, 1e-12)
	assert.False(t, s.InProgress())
}

func TestSliderImmediateTargetCompletesWithNoChange(t *testing.T) {
	s := NewSlider(48000, 120)
	s.SetValue(440)
	s.Slide(440, tstamp.Zero, SlideLinear)
	assert.False(t, s.InProgress())
	assert.InDelta(t, 440, s.Step(), 1e-9)
}

func TestLFOStepsWithinRange(t *testing.T) {
	l := NewLFO(48000, 120)
	l.SetSpeed(5)
	l.SetDepth(0.1)
	l.Enable()
	for i := 0; i < 1000; i++ {
		f := l.Step()
		assert.InDelta(t, 1.0, f, 0.15)
	}
}

func TestLFODisableWaitsForHalfCycle(t *testing.T) {
	l := NewLFO(48000, 120)
	l.SetSpeed(1000) // fast, so it completes a half cycle quickly in the test
	l.SetDepth(0.2)
	l.Enable()
	l.Step()
	l.Disable()
	active := true
	for i := 0; i < 1000 && active; i++ {
		l.Step()
		active = l.Active()
	}
	assert.False(t, l.Active())
}

func TestLinearControlsComposesSliderAndLFO(t *testing.T) {
	lc := NewLinearControls(48000, 120)
	lc.SetValue(2.0)
	v := lc.Step()
	assert.InDelta(t, 2.0, v, 1e-6)
}

func TestLinearControlsCloneIsIndependent(t *testing.T) {
	lc := NewLinearControls(48000, 120)
	lc.SetValue(1.0)
	clone := lc.Clone()
	clone.SetValue(5.0)
	assert.InDelta(t, 1.0, lc.Slider().Value(), 1e-9)
	assert.InDelta(t, 5.0, clone.Slider().Value(), 1e-9)
}
