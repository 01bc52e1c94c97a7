package app

import (
	"log/slog"
	"os"
	"path/filepath"
)

const appName = "sitepolicy"

// GetAppConfigDir returns the path to the application's configuration directory.
func GetAppConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// ConfigDirOrEmpty is GetAppConfigDir for callers that treat a missing
// user config location as "no app dir".
func ConfigDirOrEmpty() string {
	dir, err := GetAppConfigDir()
	if err != nil {
		slog.Debug("no user config directory", slog.String("error", err.Error()))
		return ""
	}
	return dir
}
