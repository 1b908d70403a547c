package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkBufferResizeAndClear(t *testing.T) {
	wb := New(4)
	require.NoError(t, wb.Resize(4))
	s := wb.GetContents()
	for i := range s {
		s[i] = 1
	}
	wb.Clear(1, 3)
	assert.Equal(t, []float32{1, 0, 0, 1}, wb.GetContents())
}

func TestWorkBufferPrefixCarriesAcrossBlocks(t *testing.T) {
	wb := New(4)
	wb.SetPrefix(0.5)
	assert.InDelta(t, 0.5, wb.Prefix(), 1e-9)
}

func TestWorkBufferMixAddsAssign(t *testing.T) {
	a := New(4)
	b := New(4)
	copy(a.GetContents(), []float32{1, 1, 1, 1})
	copy(b.GetContents(), []float32{1, 2, 3, 4})
	a.Mix(b, 0, 4)
	assert.Equal(t, []float32{2, 3, 4, 5}, a.GetContents())
}

func TestWorkBufferNoOutOfRangeWrite(t *testing.T) {
	// invariant 5: never touches samples beyond [start,stop)
	wb := New(4)
	s := wb.GetContents()
	for i := range s {
		s[i] = 9
	}
	wb.Clear(0, 2)
	assert.Equal(t, float32(9), wb.GetContents()[2])
	assert.Equal(t, float32(9), wb.GetContents()[3])
}

func TestAudioBufferMix(t *testing.T) {
	a := NewAudioBuffer(2, 4)
	b := NewAudioBuffer(2, 4)
	l, _ := b.Channel(0)
	copy(l.GetContents(), []float32{1, 1, 1, 1})
	a.Mix(b, 0, 4)
	al, _ := a.Channel(0)
	assert.Equal(t, []float32{1, 1, 1, 1}, al.GetContents())
}

func TestAudioBufferChannelOutOfRange(t *testing.T) {
	a := NewAudioBuffer(2, 4)
	_, err := a.Channel(5)
	require.Error(t, err)
}

func TestPoolReusesBuffers(t *testing.T) {
	wb := Pool.Get(8)
	wb.GetContents()[0] = 42
	Pool.Put(8, wb)
	wb2 := Pool.Get(8)
	// Pool.Get clears contents, so reused buffer must come back zeroed.
	assert.Equal(t, float32(0), wb2.GetContents()[0])
}
