package tstamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesOverflow(t *testing.T) {
	ts := New(0, Beat+5)
	assert.Equal(t, int64(1), ts.Beats)
	assert.Equal(t, int32(5), ts.Rem)
}

func TestNewNormalizesNegativeRemainder(t *testing.T) {
	ts := New(1, -5)
	assert.Equal(t, int64(0), ts.Beats)
	assert.Equal(t, int32(Beat-5), ts.Rem)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	bad := Tstamp{Beats: 0, Rem: int32(Beat)}
	require.Error(t, bad.Validate())
}

func TestCmp(t *testing.T) {
	a := New(1, 0)
	b := New(1, 1)
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestFramesMatchesSpecFormula(t *testing.T) {
	// 4 beats at 120 BPM, 48000 Hz -> 2 seconds -> 96000 frames (Scenario F).
	ts := New(4, 0)
	assert.Equal(t, int64(96000), ts.Frames(48000, 120))
}

func TestFloatRoundTrip(t *testing.T) {
	ts := New(2, Beat/4)
	f := ts.ToFloat()
	assert.InDelta(t, 2.25, f, 1e-9)
	back := FromFloat(f)
	assert.Equal(t, ts.Beats, back.Beats)
	assert.InDelta(t, float64(ts.Rem), float64(back.Rem), 2)
}
