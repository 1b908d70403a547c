package expr

// LCGRandom is a simple deterministic pseudo-random source, used wherever a
// seeded, reproducible Random stream is needed (spec.md §5's rand_p/rand_s).
type LCGRandom struct {
	state uint64
}

// NewLCGRandom seeds a new deterministic random stream.
func NewLCGRandom(seed uint64) *LCGRandom {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &LCGRandom{state: seed}
}

// Float64 returns the next uniform value in [0, 1).
func (r *LCGRandom) Float64() float64 {
	// Numerical Recipes LCG constants.
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return float64(r.state>>11) / float64(1<<53)
}
