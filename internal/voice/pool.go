package voice

import (
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// DefaultPoolSize is the default fixed voice-pool size (spec.md §4.8).
const DefaultPoolSize = 256

// Pool is a fixed-size array of Voices with priority-based stealing.
type Pool struct {
	voices []Voice
}

// NewPool allocates a Pool with size voices, all initially INACTIVE.
func NewPool(size int, randFactory func(idx int) (Random, Random)) *Pool {
	p := &Pool{voices: make([]Voice, size)}
	for i := range p.voices {
		p.voices[i].poolIdx = i
		if randFactory != nil {
			p.voices[i].RandP, p.voices[i].RandS = randFactory(i)
		}
	}
	return p
}

// Size returns the pool's fixed voice count.
func (p *Pool) Size() int { return len(p.voices) }

// GetVoice returns an INACTIVE voice if any exists, otherwise steals the
// lowest-priority occupant (BG before FG; ties broken by pool order), per
// spec.md §4.8.
func (p *Pool) GetVoice() *Voice {
	best := -1
	bestPriority := PriorityNew + 1
	for i := range p.voices {
		v := &p.voices[i]
		if v.Priority == PriorityInactive {
			return v
		}
		if v.Priority < bestPriority {
			bestPriority = v.Priority
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &p.voices[best]
}

// GetVoiceByID returns the voice at idx only if its current id matches
// expectedID — the stale-handle detection spec.md §4.8 requires.
func (p *Pool) GetVoiceByID(idx int, expectedID uint64) (*Voice, error) {
	if idx < 0 || idx >= len(p.voices) {
		return nil, kqterrors.Newf("voice index %d out of range", idx).
			Component("voice").Category(kqterrors.CategoryArgument).Build()
	}
	v := &p.voices[idx]
	if v.ID != expectedID {
		return nil, nil // stale handle: NULL per spec, not an error
	}
	return v, nil
}

// Index returns a voice's position in the pool (for foreground-array storage).
func (v *Voice) Index() int { return v.poolIdx }

// Sweep demotes finished NEW/FG note-off voices to BG and returns inactive
// voices rendered this block to the free list, per spec.md §4.8's per-block
// pass: "after rendering, inactive note-off voices demote to BG. Voices that
// set themselves inactive during rendering are returned to the free list."
func (p *Pool) Sweep() {
	for i := range p.voices {
		v := &p.voices[i]
		if v.Priority == PriorityInactive {
			continue
		}
		if v.State == nil || !v.State.Active {
			v.Priority = PriorityInactive
			continue
		}
		if !v.State.NoteOn && v.Priority != PriorityBG {
			v.Priority = PriorityBG
		}
	}
}

// Active returns every voice currently not INACTIVE, for the per-block
// render pass.
func (p *Pool) Active() []*Voice {
	var out []*Voice
	for i := range p.voices {
		if p.voices[i].Priority != PriorityInactive {
			out = append(out, &p.voices[i])
		}
	}
	return out
}
