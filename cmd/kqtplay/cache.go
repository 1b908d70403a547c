package main

import (
	"os"
	"time"

	"github.com/patrickmn/go-cache"
)

// fileCache memoizes project file reads by the path it is given, storing the
// file's mtime alongside its contents; every read stats the file, so an
// edited file is picked up on its next read instead of serving a stale
// cached copy. Mirrors the teacher's
// map[string]*cache.Cache-keyed-by-identity pattern (internal/api/v2's
// detection cache), reduced to one cache instance per kqtplay invocation.
type fileCache struct {
	c *cache.Cache
}

type cacheEntry struct {
	modTime time.Time
	data    []byte
}

func newFileCache() *fileCache {
	return &fileCache{c: cache.New(staleAfter, 10*staleAfter)}
}

func (fc *fileCache) read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if cached, ok := fc.c.Get(path); ok {
		entry := cached.(cacheEntry)
		if entry.modTime.Equal(info.ModTime()) {
			return entry.data, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc.c.Set(path, cacheEntry{modTime: info.ModTime(), data: data}, cache.DefaultExpiration)
	return data, nil
}
