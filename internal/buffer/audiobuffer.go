package buffer

import kqterrors "github.com/kunquat/kqsynth/internal/errors"

// AudioBuffer is a multi-channel bundle of WorkBuffers (typically 2, for
// stereo), with a Mix add-assign operation across all channels at once.
type AudioBuffer struct {
	channels []*WorkBuffer
}

// NewAudioBuffer allocates an AudioBuffer with the given channel count and
// per-channel sample capacity.
func NewAudioBuffer(numChannels, capacity int) *AudioBuffer {
	ab := &AudioBuffer{channels: make([]*WorkBuffer, numChannels)}
	for i := range ab.channels {
		ab.channels[i] = New(capacity)
	}
	return ab
}

// NumChannels returns the channel count.
func (ab *AudioBuffer) NumChannels() int { return len(ab.channels) }

// Channel returns the WorkBuffer for channel i.
func (ab *AudioBuffer) Channel(i int) (*WorkBuffer, error) {
	if i < 0 || i >= len(ab.channels) {
		return nil, kqterrors.Newf("channel index %d out of range [0,%d)", i, len(ab.channels)).
			Component("buffer").Category(kqterrors.CategoryArgument).Build()
	}
	return ab.channels[i], nil
}

// Resize resizes every channel to n samples.
func (ab *AudioBuffer) Resize(n int) error {
	for _, c := range ab.channels {
		if err := c.Resize(n); err != nil {
			return err
		}
	}
	return nil
}

// Clear zeroes every channel's samples in [start, stop).
func (ab *AudioBuffer) Clear(start, stop int) {
	for _, c := range ab.channels {
		c.Clear(start, stop)
	}
}

// Mix adds src's samples in [start, stop) into every matching channel.
func (ab *AudioBuffer) Mix(src *AudioBuffer, start, stop int) {
	n := len(ab.channels)
	if len(src.channels) < n {
		n = len(src.channels)
	}
	for i := 0; i < n; i++ {
		ab.channels[i].Mix(src.channels[i], start, stop)
	}
}
