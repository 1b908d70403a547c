// Package logging provides structured logging via log/slog for the engine.
//
// Render-loop hot paths (render_voice, mix) must stay below slog.LevelDebug:
// a custom TRACE level exists for per-sample diagnostics but is never emitted
// unconditionally from an inner loop.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits below slog.LevelDebug for per-sample DSP tracing.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

var (
	mu       sync.RWMutex
	base     *slog.Logger
	level    = new(slog.LevelVar)
	services = make(map[string]*slog.Logger)
	initOnce sync.Once
)

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			if name, ok := levelNames[lvl]; ok {
				a.Value = slog.StringValue(name)
			}
		}
	}
	return a
}

// Init sets up the default JSON handler writing to stderr. LogPath, when
// non-empty, rotates through lumberjack instead (following the teacher's
// internal/logging rotation policy).
func Init(logPath string) {
	initOnce.Do(func() {
		level.Set(slog.LevelInfo)
		var w io.Writer = os.Stderr
		if logPath != "" {
			w = &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    50, // megabytes
				MaxBackups: 5,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
		mu.Lock()
		base = slog.New(handler)
		mu.Unlock()
		slog.SetDefault(base)
	})
}

// SetLevel adjusts the global minimum log level at runtime.
func SetLevel(l slog.Level) { level.Set(l) }

// ForService returns a logger scoped to the named subsystem (e.g. "device",
// "voice", "player"), creating and caching it on first use.
func ForService(name string) *slog.Logger {
	mu.RLock()
	if l, ok := services[name]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := services[name]; ok {
		return l
	}
	root := base
	if root == nil {
		root = slog.Default()
	}
	l := root.With("service", name)
	services[name] = l
	return l
}
