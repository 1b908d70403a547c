package voice

import (
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// MaxProcessorsPerChannel bounds the foreground-voice array (spec.md §4.8).
const MaxProcessorsPerChannel = 64

// ArpeggioState is the channel-scoped arpeggio cursor carried across notes.
type ArpeggioState struct {
	Tones   []float64
	Index   int
	Enabled bool
}

// Channel is one of KQT_CHANNELS_MAX per module (spec.md §3 "Channel").
type Channel struct {
	Num int

	ActiveAudioUnit string // "au_XX" currently selected for note-on

	fg   [MaxProcessorsPerChannel]*Voice
	fgID [MaxProcessorsPerChannel]uint64

	CarriedPitch float64
	CarriedForce float64
	CarryPitch   bool
	CarryForce   bool

	Arp ArpeggioState

	// CVState holds per-channel carried control-variable values, keyed by
	// (audio unit, var name); populated by internal/audiounit bindings that
	// flag "carried" semantics.
	CVState map[string]any
}

// NewChannel creates an empty channel.
func NewChannel(num int) *Channel {
	return &Channel{Num: num, CVState: make(map[string]any)}
}

// SetForeground stores the new foreground voice for processor index i,
// demoting the previous occupant (if any) to BG, per spec.md §4.8.
func (c *Channel) SetForeground(i int, v *Voice) error {
	if i < 0 || i >= MaxProcessorsPerChannel {
		return kqterrors.Newf("processor index %d out of range", i).
			Component("voice").Category(kqterrors.CategoryArgument).Build()
	}
	if prev := c.fg[i]; prev != nil && prev.Priority == PriorityFG {
		prev.Priority = PriorityBG
	}
	c.fg[i] = v
	if v != nil {
		c.fgID[i] = v.ID
		v.Priority = PriorityFG
	}
	return nil
}

// Foreground returns the current foreground voice for processor index i, or
// nil if it has been stolen or none was ever set (checked against fgID so a
// stale pointer to a stolen/reused voice is never returned).
func (c *Channel) Foreground(i int) *Voice {
	if i < 0 || i >= MaxProcessorsPerChannel {
		return nil
	}
	v := c.fg[i]
	if v == nil || v.ID != c.fgID[i] {
		return nil
	}
	return v
}
