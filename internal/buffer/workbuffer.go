// Package buffer implements the fixed-capacity float32 work buffers and
// multi-channel audio buffers that carry voice-level and mixed signals
// through the device graph each processing block (spec.md §4.1).
package buffer

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/tphakala/simd"
)

// WorkBuffer is a fixed-capacity float32 array with a valid element count and
// a one-sample "prefix slot" at index -1 carrying the previous block's final
// value forward (consumed by Slider and Linear_controls across block
// boundaries).
type WorkBuffer struct {
	data   []float32 // data[0] is the prefix slot; samples are data[1:]
	valid  int
	simdOK bool
}

// New allocates a WorkBuffer with the given sample capacity.
func New(capacity int) *WorkBuffer {
	return &WorkBuffer{
		data:   make([]float32, capacity+1),
		valid:  capacity,
		simdOK: cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// Prefix returns the carried-over value from the end of the previous block.
func (w *WorkBuffer) Prefix() float32 { return w.data[0] }

// SetPrefix sets the carried-over value for the next block.
func (w *WorkBuffer) SetPrefix(v float32) { w.data[0] = v }

// Len returns the number of valid samples (excluding the prefix slot).
func (w *WorkBuffer) Len() int { return w.valid }

// Resize changes the valid sample count, reallocating if capacity is exceeded.
func (w *WorkBuffer) Resize(n int) error {
	if n < 0 {
		return kqterrors.Newf("negative work buffer size %d", n).
			Component("buffer").Category(kqterrors.CategoryArgument).Build()
	}
	if n+1 > cap(w.data) {
		nd := make([]float32, n+1)
		copy(nd, w.data)
		w.data = nd
	} else if n+1 > len(w.data) {
		w.data = w.data[:n+1]
	}
	w.valid = n
	return nil
}

// GetContents returns the mutable sample slice [0, Len()).
func (w *WorkBuffer) GetContents() []float32 { return w.data[1 : 1+w.valid] }

// Clear zeroes samples in [start, stop).
func (w *WorkBuffer) Clear(start, stop int) {
	if start < 0 || stop > w.valid || start > stop {
		return
	}
	s := w.GetContents()
	for i := start; i < stop; i++ {
		s[i] = 0
	}
}

// Copy copies src's samples in [start, stop) into this buffer at the same offsets.
func (w *WorkBuffer) Copy(src *WorkBuffer, start, stop int) {
	if start < 0 || stop > w.valid || stop > src.valid || start > stop {
		return
	}
	copy(w.GetContents()[start:stop], src.GetContents()[start:stop])
}

// Mix adds src's samples in [start, stop) into this buffer's samples
// (add-assign), using a SIMD accumulate path when the CPU supports it and
// falling back to a plain loop otherwise.
func (w *WorkBuffer) Mix(src *WorkBuffer, start, stop int) {
	if start < 0 || stop > w.valid || stop > src.valid || start > stop {
		return
	}
	dst := w.GetContents()[start:stop]
	in := src.GetContents()[start:stop]
	if w.simdOK && len(dst) >= simdMixThreshold {
		simd.AddFloat32(dst, in)
		return
	}
	for i := range dst {
		dst[i] += in[i]
	}
}

// simdMixThreshold is the minimum slice length worth dispatching through the
// SIMD accumulate path; short blocks are cheaper with a plain loop.
const simdMixThreshold = 16

// pool reuses WorkBuffers of a given capacity across processing blocks,
// mirroring the teacher's tiered bufferPoolImpl (internal/audiocore/buffer.go).
type pool struct {
	mu       sync.Mutex
	byCap    map[int]*sync.Pool
}

// Pool is a capacity-bucketed WorkBuffer pool.
var Pool = &pool{byCap: make(map[int]*sync.Pool)}

// Get returns a WorkBuffer with at least the given capacity, reused if possible.
func (p *pool) Get(capacity int) *WorkBuffer {
	p.mu.Lock()
	sp, ok := p.byCap[capacity]
	if !ok {
		sp = &sync.Pool{New: func() any { return New(capacity) }}
		p.byCap[capacity] = sp
	}
	p.mu.Unlock()
	wb := sp.Get().(*WorkBuffer)
	_ = wb.Resize(capacity)
	wb.Clear(0, wb.Len())
	return wb
}

// Put returns a WorkBuffer to its capacity bucket.
func (p *pool) Put(capacity int, wb *WorkBuffer) {
	p.mu.Lock()
	sp, ok := p.byCap[capacity]
	p.mu.Unlock()
	if ok {
		sp.Put(wb)
	}
}
