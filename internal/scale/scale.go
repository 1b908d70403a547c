// Package scale implements the Scale static data structure (spec.md §3):
// a pitch map used by MasterParams to convert note indices to pitches.
package scale

import (
	"math"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// Scale maps a note index (and optional octave) to a pitch in cents relative
// to a reference pitch.
type Scale struct {
	RefPitch float64 // Hz
	Notes    []float64 // cents offsets within one octave, ascending
	OctaveRatio float64 // cents per octave, default 1200
}

// New creates a Scale with the given reference pitch and note offsets.
func New(refPitch float64, notes []float64) (*Scale, error) {
	if refPitch <= 0 {
		return nil, kqterrors.Newf("scale reference pitch must be positive").
			Component("scale").Category(kqterrors.CategoryFormat).Build()
	}
	if len(notes) == 0 {
		return nil, kqterrors.Newf("scale needs at least one note").
			Component("scale").Category(kqterrors.CategoryFormat).Build()
	}
	return &Scale{RefPitch: refPitch, Notes: append([]float64(nil), notes...), OctaveRatio: 1200}, nil
}

// PitchOf returns the pitch in Hz for noteIndex within octave, octave 0 being
// the reference octave.
func (s *Scale) PitchOf(noteIndex, octave int) (float64, error) {
	if noteIndex < 0 || noteIndex >= len(s.Notes) {
		return 0, kqterrors.Newf("note index %d out of range", noteIndex).
			Component("scale").Category(kqterrors.CategoryArgument).Build()
	}
	cents := s.Notes[noteIndex] + float64(octave)*s.OctaveRatio
	return s.RefPitch * math.Pow(2, cents/1200), nil
}

// CentsToRatio converts a cents offset to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}
