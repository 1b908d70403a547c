package event

import (
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

func tstampFromBeats(beats int64) tstamp.Tstamp {
	return tstamp.New(beats, 0)
}

func coerceErr(vt ValueType, v project.Value) error {
	return kqterrors.Newf("cannot coerce value of kind %v to declared parameter type", v.Kind).
		Component("event").Category(kqterrors.CategoryFormat).
		Context("from_kind", v.Kind.String()).Build()
}
