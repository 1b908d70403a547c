package builtin

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/buffer"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreatesAllBuiltins(t *testing.T) {
	reg := Default(48000, 120)
	for _, name := range []string{"add", "filter", "envgen", "pitch", "stream", "panning", "force", "freeverb"} {
		k, err := reg.Create(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, k.Type())
	}
}

func TestRegistryUnknownTypeErrors(t *testing.T) {
	reg := Default(48000, 120)
	_, err := reg.Create("nonexistent")
	require.Error(t, err)
}

func TestAddKernelRendersWithinRange(t *testing.T) {
	reg := Default(48000, 120)
	k, err := reg.Create("add")
	require.NoError(t, err)
	require.NoError(t, k.SetParam("p_pitch", 440.0))

	vs := &state.VoiceState{}
	vs.Reset()
	ds := state.NewDeviceState(0, 48000, 64)
	k.VStateInit(vs, ds)

	sendL := buffer.New(64)
	sendR := buffer.New(64)
	wbs := &processor.WorkBuffers{}
	wbs.Send[0] = sendL
	wbs.Send[1] = sendR

	stop := k.RenderVoice(vs, ds, wbs, 0, 64, 120)
	assert.Equal(t, 64, stop)
	for _, v := range sendL.GetContents() {
		assert.LessOrEqual(t, v, float32(1.01))
		assert.GreaterOrEqual(t, v, float32(-1.01))
	}
}
