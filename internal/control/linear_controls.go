package control

import "github.com/kunquat/kqsynth/internal/buffer"

// LinearControls composes a value, value-slider, and LFO into a single
// streamable control, per spec.md §4.2: output = value * LFO_factor after
// applying the slider step.
type LinearControls struct {
	slider *Slider
	lfo    *LFO
}

// NewLinearControls creates a LinearControls bound to the given timing context.
func NewLinearControls(audioRate, tempo float64) *LinearControls {
	return &LinearControls{
		slider: NewSlider(audioRate, tempo),
		lfo:    NewLFO(audioRate, tempo),
	}
}

// Clone returns an independent copy sharing no mutable state, per spec.md §3
// ("Cloneable value").
func (c *LinearControls) Clone() *LinearControls {
	cp := *c
	sl := *c.slider
	lf := *c.lfo
	slSpeed := *c.lfo.speedSlider
	slDepth := *c.lfo.depthSlider
	lf.speedSlider = &slSpeed
	lf.depthSlider = &slDepth
	cp.slider = &sl
	cp.lfo = &lf
	return &cp
}

func (c *LinearControls) Slider() *Slider { return c.slider }
func (c *LinearControls) LFO() *LFO       { return c.lfo }

// SetValue jumps the base value immediately.
func (c *LinearControls) SetValue(v float64) { c.slider.SetValue(v) }

// SetTempo rescales the slider and LFO to a new tempo.
func (c *LinearControls) SetTempo(tempo float64) {
	c.slider.SetTempo(tempo)
	c.lfo.SetTempo(tempo)
}

// SetAudioRate rescales the slider and LFO to a new audio rate.
func (c *LinearControls) SetAudioRate(rate float64) {
	c.slider.SetAudioRate(rate)
	c.lfo.SetAudioRate(rate)
}

// Step advances one sample and returns value * LFO_factor.
func (c *LinearControls) Step() float64 {
	v := c.slider.Step()
	f := c.lfo.Step()
	return v * f
}

// Skip advances n samples without writing anywhere, discarding the output.
func (c *LinearControls) Skip(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

// FillWorkBuffer emits samples for [start, stop) into wb.
func (c *LinearControls) FillWorkBuffer(wb *buffer.WorkBuffer, start, stop int) {
	s := wb.GetContents()
	for i := start; i < stop; i++ {
		s[i] = float32(c.Step())
	}
}
