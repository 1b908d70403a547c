package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := Newf("boom %d", 1).Build()
	require.Error(t, err)
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "boom 1", err.Error())
}

func TestBuilderContextAndCategory(t *testing.T) {
	err := New(assertError("bad path")).
		Component("device").
		Category(CategoryCycle).
		Context("path", "au_00/out_00").
		Build()

	assert.Equal(t, "device", err.Component)
	assert.True(t, IsCategory(err, CategoryCycle))
	assert.Equal(t, "au_00/out_00", err.GetContext()["path"])
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertError(msg string) error { return simpleErr(msg) }
