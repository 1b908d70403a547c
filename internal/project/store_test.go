package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore()
	s.Set("au_00/p_manifest.json", []byte(`{}`))
	assert.True(t, s.HasManifest("au_00"))
	assert.False(t, s.HasManifest("au_01"))
}

func TestStreaderReadsScalars(t *testing.T) {
	s := NewStore()
	s.Set("p_volume.json", []byte(`{"value": 1.5}`))
	s.Set("p_name.json", []byte(`{"value": "lead"}`))
	s.Set("p_enabled.json", []byte(`{"value": true}`))
	s.Set("p_pos.json", []byte(`{"value": [2, 0]}`))

	r := NewStreader(s)

	f, err := r.ReadFloat("p_volume.json")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 1e-9)

	str, err := r.ReadString("p_name.json")
	require.NoError(t, err)
	assert.Equal(t, "lead", str)

	b, err := r.ReadBool("p_enabled.json")
	require.NoError(t, err)
	assert.True(t, b)

	ts, err := r.ReadTstamp("p_pos.json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), ts.Beats)
}

func TestStreaderMissingKeyIsFormatError(t *testing.T) {
	s := NewStore()
	r := NewStreader(s)
	_, err := r.ReadFloat("missing.json")
	require.Error(t, err)
}
