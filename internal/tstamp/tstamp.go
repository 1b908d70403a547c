// Package tstamp implements Kunquat's exact rational beat timestamp, used
// throughout the player and control primitives wherever spec.md calls for
// Tstamp arithmetic (pattern length, slider duration, envelope position).
package tstamp

import (
	"fmt"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// Beat is the number of sub-beat units per beat: 2^7*3^4*5*7*11*13*17,
// chosen so every unit subdivision from 1 through 18 divides it exactly.
const Beat int64 = 882_161_280

// Tstamp is an exact (beats, remainder) timestamp. Rem is always in [0, Beat).
type Tstamp struct {
	Beats int64
	Rem   int32
}

// Zero is the timestamp at position zero.
var Zero = Tstamp{}

// New builds a normalized Tstamp from raw beats and remainder, folding any
// remainder overflow/underflow into Beats.
func New(beats int64, rem int64) Tstamp {
	b := beats + rem/Beat
	r := rem % Beat
	if r < 0 {
		r += Beat
		b--
	}
	return Tstamp{Beats: b, Rem: int32(r)}
}

// Validate reports an error if Rem is out of [0, Beat) range (invariant 3).
func (t Tstamp) Validate() error {
	if t.Rem < 0 || int64(t.Rem) >= Beat {
		return kqterrors.Newf("tstamp remainder %d out of range [0,%d)", t.Rem, Beat).
			Component("tstamp").
			Category(kqterrors.CategoryFormat).
			Build()
	}
	return nil
}

// Add returns t+u.
func (t Tstamp) Add(u Tstamp) Tstamp {
	return New(t.Beats+u.Beats, int64(t.Rem)+int64(u.Rem))
}

// Sub returns t-u.
func (t Tstamp) Sub(u Tstamp) Tstamp {
	return New(t.Beats-u.Beats, int64(t.Rem)-int64(u.Rem))
}

// Cmp returns -1, 0, or 1 as t is less than, equal to, or greater than u.
func (t Tstamp) Cmp(u Tstamp) int {
	switch {
	case t.Beats != u.Beats:
		if t.Beats < u.Beats {
			return -1
		}
		return 1
	case t.Rem != u.Rem:
		if t.Rem < u.Rem {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// IsZero reports whether t is the zero timestamp.
func (t Tstamp) IsZero() bool { return t.Beats == 0 && t.Rem == 0 }

// ToFloat returns t in fractional beats.
func (t Tstamp) ToFloat() float64 {
	return float64(t.Beats) + float64(t.Rem)/float64(Beat)
}

// FromFloat builds the closest Tstamp to f fractional beats.
func FromFloat(f float64) Tstamp {
	beats := int64(f)
	frac := f - float64(beats)
	rem := int64(frac * float64(Beat))
	return New(beats, rem)
}

// Frames converts t to a frame count at the given audio rate and tempo,
// per spec.md §4.2: length_in_samples = beats_of(length) * (60/tempo) * rate.
func (t Tstamp) Frames(audioRate float64, tempo float64) int64 {
	if tempo <= 0 {
		return 0
	}
	seconds := t.ToFloat() * (60.0 / tempo)
	return int64(seconds*audioRate + 0.5)
}

func (t Tstamp) String() string {
	return fmt.Sprintf("[%d,%d]", t.Beats, t.Rem)
}
