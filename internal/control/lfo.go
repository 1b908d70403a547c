package control

import "math"

// LFO produces a sinusoidal multiplier with independently-sliding speed and
// depth (spec.md §4.2). Turning it off lets the current half-cycle finish
// before going silent, to avoid a click.
type LFO struct {
	audioRate float64
	tempo     float64

	speedSlider *Slider // Hz-equivalent
	depthSlider *Slider // cents (pitch) or dB (force) equivalent

	phase float64 // 0..1

	enabled    bool
	turningOff bool
}

// NewLFO creates a disabled LFO.
func NewLFO(audioRate, tempo float64) *LFO {
	return &LFO{
		audioRate:   audioRate,
		tempo:       tempo,
		speedSlider: NewSlider(audioRate, tempo),
		depthSlider: NewSlider(audioRate, tempo),
	}
}

func (l *LFO) SetSpeed(hz float64)   { l.speedSlider.SetValue(hz) }
func (l *LFO) SetDepth(depth float64) { l.depthSlider.SetValue(depth) }

func (l *LFO) SpeedSlider() *Slider { return l.speedSlider }
func (l *LFO) DepthSlider() *Slider { return l.depthSlider }

// Enable turns the LFO on.
func (l *LFO) Enable() {
	l.enabled = true
	l.turningOff = false
}

// Disable requests the LFO turn off after completing its current half-cycle.
func (l *LFO) Disable() {
	if l.enabled {
		l.turningOff = true
	}
}

// Active reports whether the LFO is still producing a non-unity factor.
func (l *LFO) Active() bool { return l.enabled }

func (l *LFO) SetTempo(tempo float64) {
	l.tempo = tempo
	l.speedSlider.SetTempo(tempo)
	l.depthSlider.SetTempo(tempo)
}

func (l *LFO) SetAudioRate(rate float64) {
	l.audioRate = rate
	l.speedSlider.SetAudioRate(rate)
	l.depthSlider.SetAudioRate(rate)
}

// Step advances one sample and returns the multiplicative factor: 1 when
// disabled/inactive, otherwise 1 + depth*sin(2*pi*phase) in linear units
// (callers convert depth's cents/dB meaning before calling SetDepth if a
// different modulation curve is desired).
func (l *LFO) Step() float64 {
	if !l.enabled {
		return 1.0
	}
	speed := l.speedSlider.Step()
	depth := l.depthSlider.Step()

	prevPhase := l.phase
	if l.audioRate > 0 {
		l.phase += speed / l.audioRate
	}
	l.phase -= math.Floor(l.phase)

	// Detect a half-cycle boundary crossing (phase wrapped past 0.5 or 1.0)
	// to let a pending Disable() take effect without a click.
	if l.turningOff {
		crossedHalf := prevPhase < 0.5 && l.phase >= 0.5
		crossedFull := l.phase < prevPhase
		if crossedHalf || crossedFull {
			l.enabled = false
			l.turningOff = false
			l.phase = 0
			return 1.0
		}
	}

	factor := 1.0 + depth*math.Sin(2*math.Pi*l.phase)
	return factor
}
