// Package config loads the escswitch configuration file.
package config

import (
	"fmt"
	"github.com/adrg/xdg"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const appName = "escswitch"

const (
	BackendAuto     = "auto"
	BackendTIS      = "tis"
	BackendHyprland = "hyprland"
	BackendIBus     = "ibus"
)

const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
	StoreMemory = "memory"
)

// latin layouts per backend, used when latin_source is not set
var defaultLatinSources = map[string]string{
	BackendTIS:      "com.apple.keylayout.ABC",
	BackendHyprland: "us",
	BackendIBus:     "xkb:us::eng",
}

var defaultDarwinApps = []string{
	"com.apple.Terminal",
	"com.microsoft.VSCode",
	"com.vim.MacVim",
	"com.exafunction.windsurf",
	"md.obsidian",
	"dev.warp.Warp-Stable",
	"com.todesktop.230313mzl4w4u92",
}

type Config struct {
	Backend        string   `toml:"backend" yaml:"backend" json:"backend"`
	LatinSource    string   `toml:"latin_source" yaml:"latin_source" json:"latin_source"`
	ShiftSwitch    bool     `toml:"shift_switch" yaml:"shift_switch" json:"shift_switch"`
	TapThresholdMs int      `toml:"tap_threshold_ms" yaml:"tap_threshold_ms" json:"tap_threshold_ms"`
	SettleMs       int      `toml:"settle_ms" yaml:"settle_ms" json:"settle_ms"`
	AllowedApps    []string `toml:"allowed_apps" yaml:"allowed_apps" json:"allowed_apps"`
	Notify         bool     `toml:"notify" yaml:"notify" json:"notify"`
	Debug          bool     `toml:"debug" yaml:"debug" json:"debug"`

	Store    StoreConfig    `toml:"store" yaml:"store" json:"store"`
	Hyprland HyprlandConfig `toml:"hyprland" yaml:"hyprland" json:"hyprland"`
	IBus     IBusConfig     `toml:"ibus" yaml:"ibus" json:"ibus"`
	Evdev    EvdevConfig    `toml:"evdev" yaml:"evdev" json:"evdev"`
}

type StoreConfig struct {
	Type string `toml:"type" yaml:"type" json:"type"`
	Path string `toml:"path" yaml:"path" json:"path"`
}

type HyprlandConfig struct {
	// Keyboard is the device whose layouts are switched. Empty means the
	// main keyboard.
	Keyboard     string `toml:"keyboard" yaml:"keyboard" json:"keyboard"`
	EvdevXMLPath string `toml:"evdev_xml_path" yaml:"evdev_xml_path" json:"evdev_xml_path"`
}

type IBusConfig struct {
	Address string   `toml:"address" yaml:"address" json:"address"`
	Engines []string `toml:"engines" yaml:"engines" json:"engines"`
}

type EvdevConfig struct {
	// Devices are /dev/input/event* paths. Empty means every keyboard.
	Devices []string `toml:"devices" yaml:"devices" json:"devices"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Backend:        BackendAuto,
		ShiftSwitch:    true,
		TapThresholdMs: 500,
		SettleMs:       12,
		Store: StoreConfig{
			Type: StoreSQLite,
		},
		Hyprland: HyprlandConfig{
			EvdevXMLPath: "/usr/share/X11/xkb/rules/evdev.xml",
		},
		IBus: IBusConfig{
			Engines: []string{"xkb:us::eng"},
		},
	}

	if runtime.GOOS == "darwin" {
		cfg.AllowedApps = append([]string(nil), defaultDarwinApps...)
	}

	return cfg
}

func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// ResolvedBackend turns "auto" into the backend for this system.
func (c *Config) ResolvedBackend() string {
	if c.Backend != BackendAuto && c.Backend != "" {
		return c.Backend
	}

	switch {
	case runtime.GOOS == "darwin":
		return BackendTIS
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return BackendHyprland
	default:
		return BackendIBus
	}
}

func (c *Config) LatinSourceID() string {
	if c.LatinSource != "" {
		return c.LatinSource
	}
	return defaultLatinSources[c.ResolvedBackend()]
}

func (c *Config) TapThreshold() time.Duration {
	return time.Duration(c.TapThresholdMs) * time.Millisecond
}

func (c *Config) SettleInterval() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

// StorePath returns the configured store file, or one under the XDG state
// directory.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}

	name := "prefs.db"
	if c.Store.Type == StoreJSON {
		name = "prefs.json"
	}

	path, err := xdg.StateFile(filepath.Join(appName, name))
	if err != nil {
		return "", fmt.Errorf("get state file: %w", err)
	}

	return path, nil
}
