// ABOUTME: XDG-based data and config directory resolution for the ducksort CLI.
// ABOUTME: Checks XDG_DATA_HOME / XDG_CONFIG_HOME, falls back to ~/.local/share/ducksort and ~/.config/ducksort.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "ducksort"

// defaultDataDir returns where run history and the TUI log live.
// It checks XDG_DATA_HOME first, then falls back to ~/.local/share/ducksort.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", appName), nil
}

// defaultConfigDir returns the directory holding config.env.
func defaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", appName), nil
}

// resolveDataDir returns override when set, otherwise the XDG default, and
// makes sure the directory exists.
func resolveDataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		var err error
		if dir, err = defaultDataDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}
