package app

import (
	"fmt"
	"os"
	"path/filepath"

	"intake-go/internal/config"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - INTAKE_CONFIG_PATH: config file location (default: ~/.config/intake.toml)
//   - INTAKE_HOME: base directory for intake data (default: ~/.local/share/intake)
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
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("INTAKE_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "intake.toml"), nil
}

// getBaseDir returns INTAKE_HOME, falling back to the XDG default ~/.local/share/intake.
func getBaseDir() (string, error) {
	if path := os.Getenv("INTAKE_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "intake"), nil
}

// LoadConfig reads the config named by the defaults, or returns the
// default config when no file exists yet.
func LoadConfig() (*config.Config, string, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}
