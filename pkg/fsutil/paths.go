package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// AppName is the name of the application used in paths
	AppName = "woezel"
)

// ExpandHome replaces a "~/" occurrence in path with the user's home directory.
// Paths without "~/" are returned unchanged.
func ExpandHome(path string) string {
	if !strings.Contains(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return strings.Replace(path, "~/", home+"/", 1)
}

// GetDataDir returns the platform-specific data directory for the application.
// On Linux: $XDG_DATA_HOME/woezel or ~/.local/share/woezel
// Elsewhere: the user config directory joined with woezel.
func GetDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "config.yaml"), nil
}
