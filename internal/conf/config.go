// Package conf implements the engine's configuration layer: a Settings
// struct unmarshaled by viper from an embedded default config.yaml, layered
// with a file found on disk and environment variables, following the
// teacher's internal/conf package shape (config.go + defaults.go + utils.go,
// a package-level *Settings singleton guarded by sync.Once).
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// LoggingSettings controls the structured logger (internal/logging).
type LoggingSettings struct {
	Level string // slog level name: debug, info, warn, error
	Path  string // rotated log file path, or "" for stderr only
}

// AudioSettings fixes the handle's sample rate and per-block frame count.
type AudioSettings struct {
	Rate       int // audio_rate, samples/second (spec.md §3)
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"` // audio_buffer_size, frames per Mix call
}

// PlayerSettings seeds a fresh MasterParams/Pool/Player (spec.md §4.8/§4.10).
type PlayerSettings struct {
	PoolSize      int     `mapstructure:"pool_size" yaml:"pool_size"`           // fixed voice-pool size
	DefaultTempo  float64 `mapstructure:"default_tempo" yaml:"default_tempo"`   // initial MasterParams.Tempo value
	DefaultVolume float64 `mapstructure:"default_volume" yaml:"default_volume"` // initial MasterParams.Volume value
	RandomSeed    uint64  `mapstructure:"random_seed" yaml:"random_seed"`       // module random_seed (spec.md §5)
}

// TelemetrySettings controls the Prometheus exposition endpoint.
type TelemetrySettings struct {
	Enabled bool
	Listen  string // address for the Prometheus exposition endpoint
}

// Settings is the engine's full runtime configuration.
type Settings struct {
	Debug     bool
	Logging   LoggingSettings
	Audio     AudioSettings
	Player    PlayerSettings
	Telemetry TelemetrySettings
}

var (
	instance      *Settings
	once          sync.Once
	instanceMutex sync.RWMutex
)

// Load reads the embedded defaults, then a config.yaml found on one of
// GetDefaultConfigPaths, then environment variables (KQSYNTH_ prefixed),
// into a fresh Settings.
func Load() (*Settings, error) {
	instanceMutex.Lock()
	defer instanceMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling config into struct: %w", err)
	}
	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	instance = settings
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("kqsynth")
	viper.AutomaticEnv()

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config.yaml to dir and
// loads it, so a first run always has a config file to edit afterward.
func createDefaultConfig(dir string) error {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("reading embedded default config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing default config file: %w", err)
	}
	return viper.ReadInConfig()
}

// Get returns the process-wide Settings, loading it with defaults on first
// use (a caller that wants load errors surfaced should call Load directly).
func Get() *Settings {
	once.Do(func() {
		if instance == nil {
			if _, err := Load(); err != nil {
				// Defaults alone are always loadable; a Load failure here
				// means the config path itself is broken, which callers
				// need to see rather than silently run unconfigured.
				panic(fmt.Sprintf("conf: default config load failed: %v", err))
			}
		}
	})
	instanceMutex.RLock()
	defer instanceMutex.RUnlock()
	return instance
}

// Save marshals the current Settings back to its config file as YAML.
func Save(dir string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func validate(s *Settings) error {
	if s.Audio.Rate <= 0 {
		return fmt.Errorf("audio.rate must be positive, got %d", s.Audio.Rate)
	}
	if s.Audio.BufferSize <= 0 {
		return fmt.Errorf("audio.buffer_size must be positive, got %d", s.Audio.BufferSize)
	}
	if s.Player.PoolSize <= 0 {
		return fmt.Errorf("player.pool_size must be positive, got %d", s.Player.PoolSize)
	}
	if s.Player.DefaultTempo <= 0 {
		return fmt.Errorf("player.default_tempo must be positive, got %g", s.Player.DefaultTempo)
	}
	return nil
}
