package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config is the persisted settings record. DeviceID and LastMuted are
// pointers so that absence ("null") is distinguishable from a value.
type Config struct {
	Hotkey     string  `json:"hotkey"`
	DeviceID   *string `json:"device_id"`
	Autostart  bool    `json:"autostart"`
	Appearance string  `json:"appearance"`
	LastMuted  *bool   `json:"last_muted"`
}

// Defaults returns the default settings.
func Defaults() *Config {
	return &Config{
		Hotkey:     "ctrl+alt+m",
		DeviceID:   nil,
		Autostart:  false,
		Appearance: "dark",
		LastMuted:  nil,
	}
}

// Load reads the config from disk. Missing keys are filled from
// defaults; a missing or malformed file yields defaults with a console
// warning, never an error.
func Load() *Config {
	cfg := Defaults()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse config, using defaults: %v\n", err)
		return Defaults()
	}
	return cfg
}

// Save writes the config to disk.
func (c *Config) Save() error {
	path := configPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetDeviceID records the preferred capture device.
func (c *Config) SetDeviceID(id string) {
	c.DeviceID = &id
}

// SetLastMuted records the last applied mute state.
func (c *Config) SetLastMuted(muted bool) {
	c.LastMuted = &muted
}

// configPath returns the platform-specific config file path.
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "micmute-tray", "config.json")
}
