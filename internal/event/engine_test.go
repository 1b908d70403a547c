package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunquat/kqsynth/internal/project"
)

func TestTriggerDispatchesHandlerAndRecords(t *testing.T) {
	e := NewEngine(nil)
	var got project.Value
	e.Register("force", func(chNum int, name string, arg project.Value) error {
		got = arg
		return nil
	})

	require.NoError(t, e.Trigger(2, "force", project.FloatVal(0.5)))

	assert.Equal(t, 0.5, got.Float)
	log := e.GeneralLog()
	require.Len(t, log, 1)
	assert.Equal(t, "force", log[0].Name)
	assert.Equal(t, 2, log[0].ChNum)
	assert.Len(t, e.TrackerLog(), 1)
}

func TestTriggerUnknownNameErrors(t *testing.T) {
	e := NewEngine(nil)
	err := e.Trigger(0, "not.a.real.event", project.None)
	assert.Error(t, err)
}

func TestTriggerDisabledEventIsSilentlySkipped(t *testing.T) {
	e := NewEngine(nil)
	called := false
	e.Register("pause", func(int, string, project.Value) error {
		called = true
		return nil
	})
	e.SetEnabled(0, "pause", false)

	require.NoError(t, e.Trigger(0, "pause", project.None))
	assert.False(t, called)
	assert.Empty(t, e.GeneralLog())
}

func TestTriggerCascadesBoundEventToOffsetChannel(t *testing.T) {
	binds := NewBindTable()
	binds.Add(BindEntry{Name: "n+", ChOffset: 1, TargetName: "n-"})
	e := NewEngine(binds)

	var firedOn []int
	record := func(chNum int, name string, arg project.Value) error {
		firedOn = append(firedOn, chNum)
		return nil
	}
	e.Register("n+", record)
	e.Register("n-", record)

	require.NoError(t, e.Trigger(0, "n+", project.FloatVal(1.0)))
	assert.Equal(t, []int{0, 1}, firedOn)
}

func TestTriggerBindConstraintFiltersCascade(t *testing.T) {
	binds := NewBindTable()
	binds.Add(BindEntry{
		Name:       "n+",
		Constraint: func(v project.Value) bool { return v.Float > 10 },
		ChOffset:   1,
		TargetName: "n-",
	})
	e := NewEngine(binds)
	var fired int
	count := func(int, string, project.Value) error {
		fired++
		return nil
	}
	e.Register("n+", count)
	e.Register("n-", count)

	require.NoError(t, e.Trigger(0, "n+", project.FloatVal(1.0)))
	assert.Equal(t, 1, fired) // only the source trigger, constraint rejects cascade

	fired = 0
	require.NoError(t, e.Trigger(0, "n+", project.FloatVal(20.0)))
	assert.Equal(t, 2, fired) // source + cascaded
}

func TestTriggerRejectsRunawayCascade(t *testing.T) {
	binds := NewBindTable()
	binds.Add(BindEntry{Name: "signal", ChOffset: 0, TargetName: "signal"})
	e := NewEngine(binds)

	err := e.Trigger(0, "signal", project.StringVal("loop"))
	assert.Error(t, err)
}

func TestIfElseEndIfControlsGeneralEvents(t *testing.T) {
	e := NewEngine(nil)
	var fired []string
	e.Register("comment", func(_ int, _ string, arg project.Value) error {
		fired = append(fired, arg.Str)
		return nil
	})

	require.NoError(t, e.Trigger(0, "cond", project.BoolVal(false)))
	require.NoError(t, e.Trigger(0, "if", project.None))
	require.NoError(t, e.Trigger(0, "comment", project.StringVal("then-branch")))
	require.NoError(t, e.Trigger(0, "else", project.None))
	require.NoError(t, e.Trigger(0, "comment", project.StringVal("else-branch")))
	require.NoError(t, e.Trigger(0, "end_if", project.None))
	require.NoError(t, e.Trigger(0, "comment", project.StringVal("after")))

	assert.Equal(t, []string{"else-branch", "after"}, fired)
}

func TestCondStackGatesGeneralEvents(t *testing.T) {
	e := NewEngine(nil)
	var fired bool
	e.Register("comment", func(int, string, project.Value) error {
		fired = true
		return nil
	})

	e.PushCond(0, false)
	require.NoError(t, e.Trigger(0, "comment", project.StringVal("hidden")))
	assert.False(t, fired)

	e.PopCond(0)
	require.NoError(t, e.Trigger(0, "comment", project.StringVal("shown")))
	assert.True(t, fired)
}
