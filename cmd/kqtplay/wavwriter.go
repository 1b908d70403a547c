package main

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/smallnest/ringbuffer"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

const wavBitDepth = 16

// wavWriter drains mixed float32 samples through a per-channel ring buffer
// (smallnest/ringbuffer, the same type the teacher keys per audio stream in
// internal/myaudio) before handing fixed-size chunks to a go-audio/wav
// Encoder, rather than encoding every Mix() call's samples directly — this
// decouples the engine's block size from the WAV encoder's write size the
// same way the teacher's analysis ring buffers decouple capture chunks from
// analysis windows.
type wavWriter struct {
	enc      *wav.Encoder
	rings    []*ringbuffer.RingBuffer
	chans    int
	chunk    int // frames per flush, in float32s per channel
	intBuf   *audio.IntBuffer
	scratch  []byte
}

func newWavWriter(w io.WriteSeeker, sampleRate, numChannels, chunkFrames int) *wavWriter {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, numChannels, 1)
	rings := make([]*ringbuffer.RingBuffer, numChannels)
	for i := range rings {
		rings[i] = ringbuffer.New(chunkFrames * 4) // 4 bytes/float32
	}
	return &wavWriter{
		enc:   enc,
		rings: rings,
		chans: numChannels,
		chunk: chunkFrames,
		intBuf: &audio.IntBuffer{
			Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
			SourceBitDepth: wavBitDepth,
			Data:           make([]int, chunkFrames*numChannels),
		},
		scratch: make([]byte, 4),
	}
}

// WriteBlock pushes one Mix() result (per-channel float32 slices, same
// length) through the ring buffers, flushing any full chunk to the encoder.
func (w *wavWriter) WriteBlock(perChannel [][]float32) error {
	if len(perChannel) != w.chans {
		return kqterrors.Newf("wavWriter: expected %d channels, got %d", w.chans, len(perChannel)).
			Component("kqtplay").Category(kqterrors.CategoryArgument).Build()
	}
	for ch, samples := range perChannel {
		for _, s := range samples {
			putFloat32LE(w.scratch, s)
			if _, err := w.rings[ch].Write(w.scratch); err != nil {
				return kqterrors.New(err).Component("kqtplay").Category(kqterrors.CategoryResource).Build()
			}
		}
	}
	for w.rings[0].Length() >= w.chunk*4 {
		if err := w.flushChunk(); err != nil {
			return err
		}
	}
	return nil
}

func (w *wavWriter) flushChunk() error {
	raw := make([]byte, w.chunk*4)
	for ch := 0; ch < w.chans; ch++ {
		if _, err := io.ReadFull(w.rings[ch], raw); err != nil {
			return kqterrors.New(err).Component("kqtplay").Category(kqterrors.CategoryResource).Build()
		}
		for i := 0; i < w.chunk; i++ {
			f := readFloat32LE(raw[i*4 : i*4+4])
			w.intBuf.Data[i*w.chans+ch] = floatToPCM16(f)
		}
	}
	return w.enc.Write(w.intBuf)
}

// Close drains any remaining partial chunk and finalizes the WAV header.
func (w *wavWriter) Close() error {
	for w.rings[0].Length() >= 4 {
		remaining := w.rings[0].Length() / 4
		if err := w.flushPartial(remaining); err != nil {
			return err
		}
	}
	return w.enc.Close()
}

func (w *wavWriter) flushPartial(frames int) error {
	raw := make([]byte, frames*4)
	data := make([]int, frames*w.chans)
	for ch := 0; ch < w.chans; ch++ {
		n, err := w.rings[ch].Read(raw)
		if err != nil && err != io.EOF {
			return kqterrors.New(err).Component("kqtplay").Category(kqterrors.CategoryResource).Build()
		}
		for i := 0; i < n/4; i++ {
			f := readFloat32LE(raw[i*4 : i*4+4])
			data[i*w.chans+ch] = floatToPCM16(f)
		}
	}
	partial := &audio.IntBuffer{Format: w.intBuf.Format, SourceBitDepth: wavBitDepth, Data: data}
	return w.enc.Write(partial)
}

func floatToPCM16(f float32) int {
	v := float64(f)
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(math.Round(v * math.MaxInt16))
}

func putFloat32LE(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func readFloat32LE(src []byte) float32 {
	bits := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
	return math.Float32frombits(bits)
}
