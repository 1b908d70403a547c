package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetDefaultConfigPaths returns, in priority order, the directories viper
// searches for config.yaml. On Windows the executable's own directory comes
// first, then ~/AppData/Roaming/kqsynth; elsewhere
// ~/.config/kqsynth comes first, then the executable's directory.
func GetDefaultConfigPaths() ([]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("fetching executable path: %w", err)
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("fetching user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		return []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "kqsynth"),
		}, nil
	default:
		return []string{
			filepath.Join(homeDir, ".config", "kqsynth"),
			exeDir,
		}, nil
	}
}
