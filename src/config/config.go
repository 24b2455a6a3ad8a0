// Package config loads runtime settings from the environment, optionally
// seeded by a .env file next to the executable.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AltEnvPathVar points at a .env file when none sits beside the executable.
const AltEnvPathVar = "HOVERSNAP"

// Config is the full runtime configuration.
type Config struct {
	ElementHotkey     string `env:"ELEMENT_HOTKEY" envDefault:"Ctrl+Shift+2"`
	FullscreenHotkey  string `env:"FULLSCREEN_HOTKEY" envDefault:"Ctrl+Shift+3"`
	WindowHotkey      string `env:"WINDOW_HOTKEY" envDefault:"Ctrl+Shift+4"`
	CancelKey         string `env:"CANCEL_KEY" envDefault:"Esc"`
	EnableFileLogging bool   `env:"ENABLE_FILE_LOGGING"`
	BindingDBPath     string `env:"BINDING_DB_PATH" envDefault:"hoversnap.db"`
}

// Load reads the .env file (if one is found) and then the environment.
// Process environment always wins over the .env file.
func Load() (*Config, error) {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &cfg, nil
}

// resolveEnvPath prefers a .env in the executable's directory, then the
// AltEnvPathVar override.
func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}
	if alt := os.Getenv(AltEnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}
