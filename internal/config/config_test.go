package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.LibraryDir == "" {
		t.Error("LibraryDir should default to a non-empty path")
	}
	if cfg.ExportDir != cfg.LibraryDir {
		t.Errorf("ExportDir = %q, want LibraryDir %q", cfg.ExportDir, cfg.LibraryDir)
	}
	if cfg.SkipSeconds != 30 {
		t.Errorf("SkipSeconds = %d, want 30", cfg.SkipSeconds)
	}
	if cfg.FadeMillis != 2000 {
		t.Errorf("FadeMillis = %d, want 2000", cfg.FadeMillis)
	}
	if len(cfg.SleepPresetsMins) != 3 {
		t.Errorf("SleepPresetsMins = %v, want three presets", cfg.SleepPresetsMins)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		LibraryDir:       "/music",
		ExportDir:        "/exports",
		SkipSeconds:      10,
		FadeMillis:       500,
		SleepPresetsMins: []int{5},
	}
	cfg.applyDefaults()

	if cfg.ExportDir != "/exports" {
		t.Errorf("ExportDir = %q, want /exports", cfg.ExportDir)
	}
	if got := cfg.SkipInterval(); got != 10*time.Second {
		t.Errorf("SkipInterval() = %v, want 10s", got)
	}
	if got := cfg.FadeWindow(); got != 500*time.Millisecond {
		t.Errorf("FadeWindow() = %v, want 500ms", got)
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("expandPath(/abs/path) = %q", got)
	}
	got := expandPath("~/music")
	if got == "~/music" || got == "" {
		t.Errorf("expandPath(~/music) = %q, want home expansion", got)
	}
}
