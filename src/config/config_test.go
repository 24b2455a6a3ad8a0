package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ElementHotkey != "Ctrl+Shift+2" {
		t.Errorf("ElementHotkey = %q", cfg.ElementHotkey)
	}
	if cfg.FullscreenHotkey != "Ctrl+Shift+3" {
		t.Errorf("FullscreenHotkey = %q", cfg.FullscreenHotkey)
	}
	if cfg.WindowHotkey != "Ctrl+Shift+4" {
		t.Errorf("WindowHotkey = %q", cfg.WindowHotkey)
	}
	if cfg.CancelKey != "Esc" {
		t.Errorf("CancelKey = %q", cfg.CancelKey)
	}
	if cfg.BindingDBPath != "hoversnap.db" {
		t.Errorf("BindingDBPath = %q", cfg.BindingDBPath)
	}
	if cfg.EnableFileLogging {
		t.Error("EnableFileLogging should default to false")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ELEMENT_HOTKEY", "Ctrl+Alt+E")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("BINDING_DB_PATH", "/tmp/custom.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ElementHotkey != "Ctrl+Alt+E" {
		t.Errorf("ElementHotkey = %q", cfg.ElementHotkey)
	}
	if !cfg.EnableFileLogging {
		t.Error("EnableFileLogging should be true")
	}
	if cfg.BindingDBPath != "/tmp/custom.db" {
		t.Errorf("BindingDBPath = %q", cfg.BindingDBPath)
	}
}
