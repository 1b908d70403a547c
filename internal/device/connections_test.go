package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConnectionPathParsesShapes(t *testing.T) {
	info, err := ValidateConnectionPath("au_00/out_00", LevelGlobal, DirSource)
	require.NoError(t, err)
	assert.Equal(t, "au_00", info.AudioUnit)
	assert.Equal(t, 0, info.Port)
	assert.False(t, info.IsInput)
}

func TestValidateConnectionPathRejectsTrailingSegments(t *testing.T) {
	_, err := ValidateConnectionPath("au_00/out_00/extra", LevelGlobal, DirSource)
	require.Error(t, err)
}

func TestValidateConnectionPathProcessorShape(t *testing.T) {
	info, err := ValidateConnectionPath("au_00/proc_01/C/in_02", LevelAudioUnitInternal, DirDest)
	require.NoError(t, err)
	assert.Equal(t, "proc_01", info.ProcessorDir)
	assert.Equal(t, 2, info.Port)
	assert.True(t, info.IsInput)
}

func TestBuildRejectsCycle(t *testing.T) {
	// Scenario E
	_, err := Build(LevelGlobal, []Edge{
		{Src: "au_00/out_00", Dst: "au_01/in_00"},
		{Src: "au_01/out_00", Dst: "au_00/in_00"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestBuildAcceptsAcyclicGraph(t *testing.T) {
	c, err := Build(LevelGlobal, []Edge{
		{Src: "au_00/out_00", Dst: "in_00"},
	})
	require.NoError(t, err)
	order := c.PostOrder()
	require.Len(t, order, 2)
	assert.Equal(t, "au_00", order[0].Name)
	assert.Equal(t, "", order[1].Name)
}

func TestUnconnectedAudioUnitRendersSilence(t *testing.T) {
	// A connection list referencing an audio unit with no existent device is
	// still accepted; the caller is responsible for treating a nil Device as
	// silence during mixing.
	c, err := Build(LevelGlobal, []Edge{{Src: "au_05/out_00", Dst: "in_00"}})
	require.NoError(t, err)
	order := c.PostOrder()
	var found bool
	for _, n := range order {
		if n.Name == "au_05" {
			found = true
			assert.Nil(t, n.Device)
		}
	}
	assert.True(t, found)
}
