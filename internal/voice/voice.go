// Package voice implements the fixed-size VoicePool and Channel described in
// spec.md §4.8: priority-based allocation/stealing, per-channel foreground
// voice tracking, and two deterministic Random streams per voice.
package voice

import (
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
)

// Priority orders voices for stealing: INACTIVE < BG < FG < NEW.
type Priority int

const (
	PriorityInactive Priority = iota
	PriorityBG
	PriorityFG
	PriorityNew
)

// Random is a deterministic float64-in-[0,1) stream (spec.md §5's rand_p/rand_s).
type Random interface {
	Float64() float64
}

// Voice wraps a VoiceState with identity, group, channel, priority, and two
// Random streams (spec.md §3 "Voice").
type Voice struct {
	ID       uint64
	GroupID  uint64
	ChNum    int
	Priority Priority
	RandP    Random
	RandS    Random
	State    *state.VoiceState
	Proc     processor.Kernel
	PState   *state.DeviceState // the driving processor's DeviceState, for render_voice

	// WBS holds this voice's own scratch work buffers (spec.md §3's
	// "voice-level work buffers"), allocated lazily by the mixer the first
	// time the voice renders and reused across its lifetime.
	WBS *processor.WorkBuffers

	poolIdx int
}

// Init resets the voice for a new note, setting priority to NEW and bumping
// its id so prior handles become stale.
func (v *Voice) Init(groupID uint64, chNum int, k processor.Kernel, pstate *state.DeviceState) {
	v.ID++
	v.GroupID = groupID
	v.ChNum = chNum
	v.Priority = PriorityNew
	v.Proc = k
	v.PState = pstate
	if v.State == nil {
		v.State = &state.VoiceState{}
	}
	v.State.Reset()
	if k != nil {
		k.VStateInit(v.State, pstate)
	}
}
