package sample

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWAV builds a minimal 16-bit PCM mono WAV file containing the given samples.
func makeWAV(samples []int16) []byte {
	var buf bytes.Buffer
	dataSize := len(samples) * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(48000))
	binary.Write(&buf, binary.LittleEndian, uint32(48000*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestLoadWAVDecodesSamples(t *testing.T) {
	raw := makeWAV([]int16{0, 16384, -16384, 32767})
	s, err := LoadWAV(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Channels)
	assert.Equal(t, 48000, s.SampleRate)
	require.Equal(t, 4, s.NumFrames())
	assert.InDelta(t, 0.5, s.Frames[0][1], 0.01)
}

func TestSampleAtInterpolates(t *testing.T) {
	s := &Sample{Channels: 1, SampleRate: 48000, Frames: [][]float32{{0, 1}}, LoopEnd: -1}
	assert.InDelta(t, 0.5, s.At(0, 0.5), 1e-6)
}

func TestSampleAtOutOfRangeIsSilent(t *testing.T) {
	s := &Sample{Channels: 1, SampleRate: 48000, Frames: [][]float32{{0, 1}}, LoopEnd: -1}
	assert.Equal(t, float32(0), s.At(0, 100))
}
