package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibraryDir string `koanf:"library_dir"` // where imported/exported audio lives
	ExportDir  string `koanf:"export_dir"`  // conversion output (defaults to library_dir)

	SkipSeconds       int   `koanf:"skip_seconds"`        // local skip interval (default: 30)
	FadeMillis        int   `koanf:"fade_millis"`         // sleep-timer fade-out window (default: 2000)
	SleepPresetsMins  []int `koanf:"sleep_presets_mins"`  // sleep timer presets (default: 15, 30, 60)
	DisableNowPlaying bool  `koanf:"disable_now_playing"` // skip the MPRIS bridge entirely
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.LibraryDir = expandPath(cfg.LibraryDir)
	cfg.ExportDir = expandPath(cfg.ExportDir)
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LibraryDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.LibraryDir = filepath.Join(home, "Music", "pickup")
		} else {
			c.LibraryDir = "pickup-library"
		}
	}
	if c.ExportDir == "" {
		c.ExportDir = c.LibraryDir
	}
	if c.SkipSeconds <= 0 {
		c.SkipSeconds = 30
	}
	if c.FadeMillis <= 0 {
		c.FadeMillis = 2000
	}
	if len(c.SleepPresetsMins) == 0 {
		c.SleepPresetsMins = []int{15, 30, 60}
	}
}

// SkipInterval returns the configured local skip interval.
func (c *Config) SkipInterval() time.Duration {
	return time.Duration(c.SkipSeconds) * time.Second
}

// FadeWindow returns the configured sleep-timer fade-out window.
func (c *Config) FadeWindow() time.Duration {
	return time.Duration(c.FadeMillis) * time.Millisecond
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/pickup/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pickup", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
