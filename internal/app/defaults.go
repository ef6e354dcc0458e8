package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - LOCKBOX_CONFIG_PATH: config file location (default: ~/.config/lockbox.toml)
//   - LOCKBOX_HOME: base directory for lockbox data (default: ~/.local/share/lockbox)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"key_file":    filepath.Join(baseDir, "keys", "lockbox.txt"),
	}, nil
}

// getConfigPath returns the config file path, checking LOCKBOX_CONFIG_PATH
// first, then falling back to the default ~/.config/lockbox.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("LOCKBOX_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "lockbox.toml"), nil
}

// getBaseDir returns the base directory for lockbox data, checking
// LOCKBOX_HOME first, then falling back to the XDG default ~/.local/share/lockbox.
func getBaseDir() (string, error) {
	if path := os.Getenv("LOCKBOX_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "lockbox"), nil
}
