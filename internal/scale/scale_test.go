package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchOfReferenceNote(t *testing.T) {
	s, err := New(440, []float64{0, 100, 200})
	require.NoError(t, err)
	p, err := s.PitchOf(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 440.0, p, 1e-9)
}

func TestPitchOfOctaveUp(t *testing.T) {
	s, err := New(440, []float64{0})
	require.NoError(t, err)
	p, err := s.PitchOf(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 880.0, p, 1e-6)
}

func TestPitchOfRejectsBadIndex(t *testing.T) {
	s, err := New(440, []float64{0})
	require.NoError(t, err)
	_, err = s.PitchOf(5, 0)
	require.Error(t, err)
}
