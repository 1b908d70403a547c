package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesCreateAndGet(t *testing.T) {
	tbl := NewTables()
	ds, err := tbl.Create(1, 48000, 64)
	require.NoError(t, err)
	assert.Equal(t, ds, tbl.Get(1))
}

func TestTablesCreateDuplicateErrors(t *testing.T) {
	tbl := NewTables()
	_, err := tbl.Create(1, 48000, 64)
	require.NoError(t, err)
	_, err = tbl.Create(1, 48000, 64)
	require.Error(t, err)
}

func TestDeviceStateResizeUpdatesAllBuffers(t *testing.T) {
	ds := NewDeviceState(1, 48000, 64)
	ds.AddBuffer(PortOut, 0, 2)
	ds.Resize(128)
	buf := ds.Buffer(PortOut, 0)
	require.NotNil(t, buf)
	ch, err := buf.Channel(0)
	require.NoError(t, err)
	assert.Equal(t, 128, ch.Len())
}

func TestVoiceStateResetAndDeactivate(t *testing.T) {
	vs := &VoiceState{}
	vs.Reset()
	assert.True(t, vs.Active)
	assert.True(t, vs.NoteOn)
	vs.Deactivate()
	assert.False(t, vs.Active)
}
