package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func TestPoolReturnsInactiveVoiceFirst(t *testing.T) {
	p := NewPool(2, func(i int) (Random, Random) { return fixedRandom(0.1), fixedRandom(0.2) })
	v := p.GetVoice()
	require.NotNil(t, v)
	v.Init(1, 0, nil, nil)
	assert.Equal(t, PriorityNew, v.Priority)
}

func TestPoolStealsLowestPriority(t *testing.T) {
	// Scenario C: pool size 2, three consecutive note-ons.
	p := NewPool(2, nil)
	v1 := p.GetVoice()
	v1.Init(1, 0, nil, nil)
	v1.State.Active = true
	ch := NewChannel(0)
	require.NoError(t, ch.SetForeground(0, v1))
	v1ID := v1.ID

	v2 := p.GetVoice()
	v2.Init(2, 0, nil, nil)
	v2.State.Active = true
	require.NoError(t, ch.SetForeground(0, v2))
	// v1 demoted to BG by SetForeground.
	assert.Equal(t, PriorityBG, v1.Priority)

	v3 := p.GetVoice()
	require.NotNil(t, v3)
	// Pool is full (two voices: v1=BG, v2=FG); steal lowest priority, v1.
	assert.Equal(t, v1, v3)
	v3.Init(3, 0, nil, nil)
	v3.State.Active = true
	require.NoError(t, ch.SetForeground(0, v3))

	assert.NotEqual(t, v1ID, v3.ID)
	stale, err := p.GetVoiceByID(v1.Index(), v1ID)
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestSweepDemotesNoteOffToBGAndFreesInactive(t *testing.T) {
	p := NewPool(2, nil)
	v := p.GetVoice()
	v.Init(1, 0, nil, nil)
	v.State.Active = true
	v.State.NoteOn = false
	v.Priority = PriorityFG
	p.Sweep()
	assert.Equal(t, PriorityBG, v.Priority)

	v.State.Active = false
	p.Sweep()
	assert.Equal(t, PriorityInactive, v.Priority)
}

func TestChannelForegroundStaleAfterTheft(t *testing.T) {
	ch := NewChannel(0)
	p := NewPool(1, nil)
	v := p.GetVoice()
	v.Init(1, 0, nil, nil)
	v.State.Active = true
	require.NoError(t, ch.SetForeground(0, v))
	assert.Equal(t, v, ch.Foreground(0))

	v.ID++ // simulate theft/reinit without going through channel
	assert.Nil(t, ch.Foreground(0))
}
