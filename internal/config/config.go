// Package config loads the peripheral shell configuration: a .vushrc
// key=value override file, best-effort, ignored if absent.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultPath returns the default .vushrc location under the user's
// home directory, or "" if it cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vushrc")
}

// Load reads key=value pairs from path into the process environment.
// Missing files are not an error; only real read/parse failures on an
// existing file are reported.
func Load(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// CacheDir returns ~/.cache/vush, creating it if necessary (history
// file, debug log).
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".cache", "vush")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
