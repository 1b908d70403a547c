package envelope

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeLinearInterpolation(t *testing.T) {
	e, err := New([]Point{{0, 0}, {1, 1}, {2, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, e.ValueAt(0.5), 1e-9)
	assert.InDelta(t, 1.0, e.ValueAt(1.0), 1e-9)
	assert.InDelta(t, 0.5, e.ValueAt(1.5), 1e-9)
}

func TestEnvelopeClampsToYRange(t *testing.T) {
	e, err := New([]Point{{0, -2}, {1, 2}})
	require.NoError(t, err)
	e.HasYRange = true
	e.YMin, e.YMax = -1, 1
	assert.Equal(t, -1.0, e.ValueAt(0))
	assert.Equal(t, 1.0, e.ValueAt(1))
}

func TestEnvelopeRejectsTooFewNodes(t *testing.T) {
	_, err := New([]Point{{0, 0}})
	require.Error(t, err)
}

func TestTimeScaleFormula(t *testing.T) {
	assert.InDelta(t, 2.0, TimeScale(1200, 1), 1e-9)
	assert.InDelta(t, 1.0, TimeScale(0, 1), 1e-9)
}

func TestTimeEnvStateFinishesAtEnd(t *testing.T) {
	e, err := New([]Point{{0, 0}, {0.5, 1}})
	require.NoError(t, err)
	s := NewTimeEnvState(e)
	wb := buffer.New(48000)
	stop := s.Process(wb, 0, 48000, 48000, 1.0)
	assert.LessOrEqual(t, stop, 48000)
	assert.True(t, s.IsFinished())
	assert.InDelta(t, 1.0, s.LastValue(), 1e-3)
}

func TestTimeEnvStateLoops(t *testing.T) {
	e, err := New([]Point{{0, 0}, {1, 1}, {2, 0}})
	require.NoError(t, err)
	require.NoError(t, e.SetLoop(0, 2))
	s := NewTimeEnvState(e)
	wb := buffer.New(48000)
	stop := s.Process(wb, 0, 48000, 48000, 1.0)
	assert.Equal(t, 48000, stop)
	assert.False(t, s.IsFinished())
}
