package player

import (
	"github.com/kunquat/kqsynth/internal/control"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

// PlayMode controls what happens when playback reaches the end of a pattern
// (spec.md §4.10's "at pat.length, either advance ... or reset ... or stop").
type PlayMode int

const (
	PlayModeNormal PlayMode = iota
	PlayModeLoopPattern
	PlayModeOncePattern
)

// JumpTarget is a (system, row) pair staged by "goto.set"/"mj.row" and taken
// by "goto"/"mjump". System indexes the flat pattern-sequence this engine
// plays (spec.md's multi-track/subsong addressing collapses to this single
// sequence here — see DESIGN.md).
type JumpTarget struct {
	System int
	Row    tstamp.Tstamp
	Armed  bool
}

// MasterParams is the transport state described in spec.md §3: current
// position, tempo/volume sliders, jump target, scale, and play mode.
type MasterParams struct {
	System  int
	Pattern int
	Pos     tstamp.Tstamp

	Tempo  *control.Slider
	Volume *control.Slider

	Jump JumpTarget

	Scale      int
	ScaleFixed bool

	Mode   PlayMode
	Paused bool

	metrics *Metrics
}

// NewMasterParams creates transport state at position zero with the given
// initial tempo/volume and timing context; metrics may be nil (no observer).
func NewMasterParams(audioRate, initialTempo, initialVolume float64, metrics *Metrics) *MasterParams {
	tempo := control.NewSlider(audioRate, initialTempo)
	tempo.SetValue(initialTempo)
	vol := control.NewSlider(audioRate, initialTempo)
	vol.SetValue(initialVolume)
	return &MasterParams{
		Tempo:   tempo,
		Volume:  vol,
		metrics: metrics,
	}
}

// SetTempo jumps tempo immediately (the "mtempo" event).
func (mp *MasterParams) SetTempo(v float64) {
	mp.Tempo.SetValue(v)
	mp.Volume.SetTempo(v)
}

// SlideTempo begins a tempo ramp (the "m/tempo" event).
func (mp *MasterParams) SlideTempo(target float64, length tstamp.Tstamp, mode control.SlideMode) {
	mp.Tempo.Slide(target, length, mode)
}

// SetJumpTarget stages the pattern-sequence position a later "mjump"/"goto"
// will jump to (the "goto.set" event); it does not itself move playback.
func (mp *MasterParams) SetJumpTarget(system int) {
	mp.Jump.System = system
}

// SetJumpRow stages the row within the target pattern a later "mjump"/"goto"
// will land on (the "mj.row" event); it does not itself move playback.
func (mp *MasterParams) SetJumpRow(row tstamp.Tstamp) {
	mp.Jump.Row = row
}

// TriggerJump arms the currently staged jump target to be taken on the
// Player's next Mix iteration (the "mjump"/"goto" events).
func (mp *MasterParams) TriggerJump() {
	mp.Jump.Armed = true
}

// TakeJump repositions the transport to the armed jump target, if any, and
// reports whether a jump occurred. Per-channel carried control state
// (sliders/LFOs, carried pitch/force) is deliberately untouched — decided in
// DESIGN.md's Open Question section as channel-owned, not pattern-owned.
func (mp *MasterParams) TakeJump() bool {
	if !mp.Jump.Armed {
		return false
	}
	mp.System = mp.Jump.System
	mp.Pos = mp.Jump.Row
	mp.Jump.Armed = false
	return true
}

// patInstRefArg extracts a (pattern, instance) pair from a trigger argument,
// used by the "pattern" control event.
func patInstRefArg(v project.Value) (project.PatInstRef, bool) {
	if v.Kind != project.KindPatInstRef {
		return project.PatInstRef{}, false
	}
	return v.Pat, true
}
