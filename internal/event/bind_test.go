package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kunquat/kqsynth/internal/project"
)

func TestBindTableMatchingFiltersByNameAndConstraint(t *testing.T) {
	bt := NewBindTable()
	bt.Add(BindEntry{Name: "force", TargetName: "force", ChOffset: 1})
	bt.Add(BindEntry{
		Name:       "force",
		Constraint: func(v project.Value) bool { return v.Float < 0 },
		TargetName: "mute",
		ChOffset:   2,
	})
	bt.Add(BindEntry{Name: "pitch", TargetName: "pitch", ChOffset: 1})

	matches := bt.Matching("force", project.FloatVal(0.8))
	assert.Len(t, matches, 1)
	assert.Equal(t, "force", matches[0].TargetName)

	matches = bt.Matching("force", project.FloatVal(-0.2))
	assert.Len(t, matches, 2)

	assert.Empty(t, bt.Matching("unbound", project.None))
}
