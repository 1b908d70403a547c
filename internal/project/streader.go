package project

import (
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

// Streader is the sole contact point with the (out-of-scope) key-value
// project loader and JSON/binary format parser. On a failed read the
// accessor returns the zero value together with a non-nil error; SetError
// and Error hold a diagnostic that the caller records, the accessors do not
// set it themselves (spec.md §4.4's "no exceptions").
type Streader interface {
	ReadString(key string) (string, error)
	ReadInt(key string) (int64, error)
	ReadFloat(key string) (float64, error)
	ReadBool(key string) (bool, error)
	ReadTstamp(key string) (tstamp.Tstamp, error)
	SetError(err error)
	Error() error
}

// errStreader is a minimal Streader that only accumulates an error, used by
// callers (tests, the CLI loader) that need to satisfy the interface without
// a backing Store.
type errStreader struct{ err error }

func (e *errStreader) ReadString(string) (string, error)            { return "", e.err }
func (e *errStreader) ReadInt(string) (int64, error)                { return 0, e.err }
func (e *errStreader) ReadFloat(string) (float64, error)            { return 0, e.err }
func (e *errStreader) ReadBool(string) (bool, error)                { return false, e.err }
func (e *errStreader) ReadTstamp(string) (tstamp.Tstamp, error)      { return tstamp.Zero, e.err }
func (e *errStreader) SetError(err error)                           { e.err = err }
func (e *errStreader) Error() error                                 { return e.err }

// NewErrorStreader returns a Streader pre-populated with err, useful for
// propagating a parse failure through a chain of Streader-consuming calls.
func NewErrorStreader(err error) Streader { return &errStreader{err: err} }

// formatError wraps a read failure as a CategoryFormat EnhancedError.
func formatError(key string, cause error) error {
	return kqterrors.New(cause).
		Component("project").
		Category(kqterrors.CategoryFormat).
		Context("key", key).
		Build()
}
