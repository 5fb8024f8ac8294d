package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "msgquery"

// DefaultDataDir picks where message stores live when --data-dir is unset.
// Order: $MSGQ_DATA_DIR, $XDG_DATA_HOME/msgquery, the OS user data dir, then
// ./data when no home directory can be resolved.
func DefaultDataDir() string {
	if v := os.Getenv("MSGQ_DATA_DIR"); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		return filepath.Join(home, "AppData", "Local", appDirName)
	default:
		return filepath.Join(home, ".local", "share", appDirName)
	}
}

// EngineDir returns the per-engine subdirectory of a data dir so pebble and
// badger stores never share files.
func EngineDir(dataDir, engine string) string {
	return filepath.Join(dataDir, "store-"+engine)
}
