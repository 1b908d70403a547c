package project

import (
	"strings"
	"sync"

	"github.com/antonholmquist/jason"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

// Store is an in-memory, hierarchical key/value map (the consumer's view of
// spec.md §3's Project) mapping keys like "au_00/proc_01/p_cutoff.json" to
// raw bytes. It is not the real on-disk loader (out of scope), only a
// driver used by tests and the CLI to exercise the core without one.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store { return &Store{data: make(map[string][]byte)} }

// Set stores raw bytes under key, mirroring Handle.set_data (spec.md §6).
func (s *Store) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Get returns the raw bytes stored under key, if any.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	return b, ok
}

// HasManifest reports whether dir/p_manifest.json exists, the activity gate
// spec.md §6 requires for songs/audio-units/processors.
func (s *Store) HasManifest(dir string) bool {
	key := strings.TrimSuffix(dir, "/") + "/p_manifest.json"
	_, ok := s.Get(key)
	return ok
}

// Keys returns all keys with the given prefix.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// storeStreader reads scalar JSON values for a single key out of a Store,
// using jason's dynamic-JSON accessors the way the teacher's go.mod pulls
// in antonholmquist/jason for ad hoc JSON field access.
type storeStreader struct {
	store *Store
	err   error
}

// NewStreader returns a Streader backed by store.
func NewStreader(store *Store) Streader { return &storeStreader{store: store} }

func (s *storeStreader) object(key string) (*jason.Object, error) {
	raw, ok := s.store.Get(key)
	if !ok {
		return nil, formatError(key, kqterrors.Newf("key %q not found", key).
			Component("project").Category(kqterrors.CategoryFormat).Build())
	}
	obj, err := jason.NewObjectFromBytes(raw)
	if err != nil {
		return nil, formatError(key, err)
	}
	return obj, nil
}

func (s *storeStreader) ReadString(key string) (string, error) {
	obj, err := s.object(key)
	if err != nil {
		return "", err
	}
	v, err := obj.GetString("value")
	if err != nil {
		return "", formatError(key, err)
	}
	return v, nil
}

func (s *storeStreader) ReadInt(key string) (int64, error) {
	obj, err := s.object(key)
	if err != nil {
		return 0, err
	}
	v, err := obj.GetInt64("value")
	if err != nil {
		return 0, formatError(key, err)
	}
	return v, nil
}

func (s *storeStreader) ReadFloat(key string) (float64, error) {
	obj, err := s.object(key)
	if err != nil {
		return 0, err
	}
	v, err := obj.GetFloat64("value")
	if err != nil {
		return 0, formatError(key, err)
	}
	return v, nil
}

func (s *storeStreader) ReadBool(key string) (bool, error) {
	obj, err := s.object(key)
	if err != nil {
		return false, err
	}
	v, err := obj.GetBoolean("value")
	if err != nil {
		return false, formatError(key, err)
	}
	return v, nil
}

func (s *storeStreader) ReadTstamp(key string) (tstamp.Tstamp, error) {
	obj, err := s.object(key)
	if err != nil {
		return tstamp.Zero, err
	}
	arr, err := obj.GetValueArray("value")
	if err != nil || len(arr) != 2 {
		return tstamp.Zero, formatError(key, kqterrors.Newf("expected [beats,rem] array").
			Component("project").Category(kqterrors.CategoryFormat).Build())
	}
	beats, err1 := arr[0].Int64()
	rem, err2 := arr[1].Int64()
	if err1 != nil || err2 != nil {
		return tstamp.Zero, formatError(key, kqterrors.Newf("non-integer tstamp components").
			Component("project").Category(kqterrors.CategoryFormat).Build())
	}
	return tstamp.New(beats, rem), nil
}

func (s *storeStreader) SetError(err error) { s.err = err }
func (s *storeStreader) Error() error       { return s.err }
