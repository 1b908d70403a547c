package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// loadProject walks dir and returns every regular ".json" file's contents
// keyed by its path relative to dir (forward-slash separated), matching the
// key shape pkg/kqt's Validate expects ("p_manifest.json", "au_00/p_manifest.json",
// "pat_000/p_pattern.json", "album/p_tracks.json", ...). Reads are served
// through fileCache: every file is still stat'ed on each walk, but an
// unchanged file (same mtime, entry not yet expired) is not re-read.
func loadProject(dir string, cache *fileCache) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		data, err := cache.read(path)
		if err != nil {
			return err
		}
		out[key] = data
		return nil
	})
	if err != nil {
		return nil, kqterrors.New(err).Component("kqtplay").
			Category(kqterrors.CategoryResource).Context("dir", dir).Build()
	}
	if len(out) == 0 {
		return nil, kqterrors.Newf("no .json project files found under %s", dir).
			Component("kqtplay").Category(kqterrors.CategoryFormat).Build()
	}
	return out, nil
}

// applyProject copies a loaded project's keys into h via SetData.
func applyProject(h kqtHandleSetter, project map[string][]byte) error {
	for key, data := range project {
		if err := h.SetData(key, data); err != nil {
			return err
		}
	}
	return nil
}

// kqtHandleSetter is the subset of *kqt.Handle applyProject needs, so it
// can be exercised against a fake in tests without a full Handle.
type kqtHandleSetter interface {
	SetData(key string, data []byte) error
}

// staleAfter is fileCache's entry expiry: a cached file's contents are
// dropped this long after being stored and re-read on the next access (see
// cache.go).
const staleAfter = 2 * time.Second
