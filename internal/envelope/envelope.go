// Package envelope implements the static Envelope data structure and the
// Time_env_state cursor described in spec.md §3/§4.3.
package envelope

import (
	"math"
	"sort"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// Point is a single (x, y) node of a piecewise-linear envelope.
type Point struct {
	X, Y float64
}

// Envelope is a piecewise-linear curve over non-negative x, with optional
// loop markers and an optional y-range.
type Envelope struct {
	Nodes     []Point
	LoopStart int // index into Nodes, or -1 for no loop
	LoopEnd   int
	HasYRange bool
	YMin, YMax float64
}

// New validates and returns an Envelope built from nodes, sorted by X.
func New(nodes []Point) (*Envelope, error) {
	if len(nodes) < 2 {
		return nil, kqterrors.Newf("envelope needs at least 2 nodes").
			Component("envelope").Category(kqterrors.CategoryFormat).Build()
	}
	sorted := append([]Point(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	if sorted[0].X < 0 {
		return nil, kqterrors.Newf("envelope x must be non-negative").
			Component("envelope").Category(kqterrors.CategoryFormat).Build()
	}
	return &Envelope{Nodes: sorted, LoopStart: -1, LoopEnd: -1}, nil
}

// SetLoop marks [start,end) node indices as the loop region.
func (e *Envelope) SetLoop(start, end int) error {
	if start < 0 || end >= len(e.Nodes) || start > end {
		return kqterrors.Newf("invalid envelope loop range [%d,%d)", start, end).
			Component("envelope").Category(kqterrors.CategoryArgument).Build()
	}
	e.LoopStart, e.LoopEnd = start, end
	return nil
}

// Length returns the envelope's natural (non-looping) x extent.
func (e *Envelope) Length() float64 {
	return e.Nodes[len(e.Nodes)-1].X
}

// ValueAt linearly interpolates the envelope's y value at position x,
// clamping to [YMin,YMax] if HasYRange.
func (e *Envelope) ValueAt(x float64) float64 {
	n := e.Nodes
	if x <= n[0].X {
		return e.clamp(n[0].Y)
	}
	last := n[len(n)-1]
	if x >= last.X {
		return e.clamp(last.Y)
	}
	for i := 1; i < len(n); i++ {
		if x <= n[i].X {
			prev := n[i-1]
			t := (x - prev.X) / (n[i].X - prev.X)
			return e.clamp(prev.Y + t*(n[i].Y-prev.Y))
		}
	}
	return e.clamp(last.Y)
}

func (e *Envelope) clamp(y float64) float64 {
	if !e.HasYRange {
		return y
	}
	return math.Max(e.YMin, math.Min(e.YMax, y))
}

// HasLoop reports whether a loop region is configured.
func (e *Envelope) HasLoop() bool { return e.LoopStart >= 0 }
