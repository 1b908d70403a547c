// Package sample implements the Sample static data structure consumed by
// sample-playback processor kernels (spec.md §3), loading PCM data via the
// go-audio/wav decoder or tphakala/flac, following the teacher's use of
// go-audio/wav and tphakala/flac for its own audio ingestion paths.
package sample

import (
	"bytes"
	"io"

	"github.com/go-audio/wav"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/tphakala/flac"
)

// Sample holds decoded float32 PCM data, one slice per channel, plus its
// native format.
type Sample struct {
	Channels   int
	SampleRate int
	Frames     [][]float32 // Frames[channel] = samples
	LoopStart  int
	LoopEnd    int // -1 for no loop
}

// LoadWAV decodes a WAV-encoded sample from r.
func LoadWAV(r io.Reader) (*Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, kqterrors.New(err).Component("sample").Category(kqterrors.CategoryResource).Build()
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, kqterrors.Newf("invalid WAV file").
			Component("sample").Category(kqterrors.CategoryFormat).Build()
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, kqterrors.New(err).Component("sample").Category(kqterrors.CategoryFormat).Build()
	}
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	s := &Sample{
		Channels:   channels,
		SampleRate: buf.Format.SampleRate,
		Frames:     make([][]float32, channels),
		LoopEnd:    -1,
	}
	n := len(buf.Data) / channels
	maxAbs := float32(int(1) << uint(buf.SourceBitDepth-1))
	if maxAbs == 0 {
		maxAbs = 32768
	}
	for c := 0; c < channels; c++ {
		s.Frames[c] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			s.Frames[c][i] = float32(buf.Data[i*channels+c]) / maxAbs
		}
	}
	return s, nil
}

// LoadFLAC decodes a FLAC-encoded sample from r.
func LoadFLAC(r io.Reader) (*Sample, error) {
	stream, err := flac.Parse(r)
	if err != nil {
		return nil, kqterrors.New(err).Component("sample").Category(kqterrors.CategoryFormat).Build()
	}
	channels := int(stream.Info.NChannels)
	if channels <= 0 {
		channels = 1
	}
	s := &Sample{
		Channels:   channels,
		SampleRate: int(stream.Info.SampleRate),
		Frames:     make([][]float32, channels),
		LoopEnd:    -1,
	}
	maxAbs := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kqterrors.New(err).Component("sample").Category(kqterrors.CategoryFormat).Build()
		}
		for c := 0; c < channels && c < len(frame.Subframes); c++ {
			sub := frame.Subframes[c]
			for _, v := range sub.Samples {
				s.Frames[c] = append(s.Frames[c], float32(v)/maxAbs)
			}
		}
	}
	return s, nil
}

// At returns the sample value for channel c at (possibly fractional) frame
// position pos, using linear interpolation, or 0 past the end.
func (s *Sample) At(c int, pos float64) float32 {
	if c < 0 || c >= s.Channels {
		return 0
	}
	frames := s.Frames[c]
	if len(frames) == 0 {
		return 0
	}
	i0 := int(pos)
	if i0 < 0 || i0 >= len(frames) {
		return 0
	}
	i1 := i0 + 1
	if i1 >= len(frames) {
		if s.LoopEnd >= 0 && i1 > s.LoopEnd {
			i1 = s.LoopStart
		} else {
			return frames[i0]
		}
	}
	frac := float32(pos - float64(i0))
	return frames[i0]*(1-frac) + frames[i1]*frac
}

// NumFrames returns the sample length in frames for channel 0.
func (s *Sample) NumFrames() int {
	if s.Channels == 0 {
		return 0
	}
	return len(s.Frames[0])
}
