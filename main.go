package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/llehouerou/pickup/internal/artwork"
	"github.com/llehouerou/pickup/internal/config"
	"github.com/llehouerou/pickup/internal/export"
	"github.com/llehouerou/pickup/internal/importer"
	"github.com/llehouerou/pickup/internal/mpris"
	"github.com/llehouerou/pickup/internal/notify"
	"github.com/llehouerou/pickup/internal/nowplaying"
	"github.com/llehouerou/pickup/internal/playback"
	"github.com/llehouerou/pickup/internal/player"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/session"
	"github.com/llehouerou/pickup/internal/sleeptimer"
	"github.com/llehouerou/pickup/internal/state"
	"github.com/llehouerou/pickup/internal/stderr"
	"github.com/llehouerou/pickup/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pickup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()

	// ALSA and the decoders write straight to fd 2, which would corrupt
	// the TUI. Capture it and route the noise into the log instead.
	if err := stderr.Start(); err == nil {
		defer stderr.Stop()
		go func() {
			for line := range stderr.Messages {
				logger.Debug("audio backend", "msg", line)
			}
		}()
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	tracks := playlist.NewStore(stateMgr.DB())

	artStore, err := artwork.NewStore(filepath.Join(xdg.DataHome, "pickup", "artwork"))
	if err != nil {
		return fmt.Errorf("open artwork store: %w", err)
	}

	imports := importer.New(cfg.LibraryDir, tracks, artStore)

	out := player.New()
	defer out.Stop()

	var surface nowplaying.Publisher = nowplaying.Noop{}
	var bridge *mpris.Bridge
	if !cfg.DisableNowPlaying {
		bridge, err = mpris.New()
		if err != nil {
			logger.Warn("now-playing bridge unavailable", "err", err)
		} else {
			surface = bridge
			defer bridge.Close()
		}
	}

	engine := playback.New(out, stateMgr, surface)
	defer engine.Close()
	engine.SetArtworkLoader(artStore)
	engine.SetFadeWindow(cfg.FadeWindow())

	timer := sleeptimer.New()
	defer timer.Cancel()

	notifier, err := notify.New()
	if err != nil {
		logger.Warn("notifications unavailable", "err", err)
	}

	exports := export.New(export.NewFFmpegConverter(), cfg.ExportDir)
	defer exports.Close()
	if notifier != nil {
		exports.SetNotifier(session.NotifyAdapter{N: notifier})
	}

	coord := session.New(engine, timer, tracks, imports, exports, logger)
	defer coord.Close()
	if bridge != nil {
		coord.DispatchCommands(bridge.Commands())
	}

	presets := make([]time.Duration, 0, len(cfg.SleepPresetsMins))
	for _, mins := range cfg.SleepPresetsMins {
		presets = append(presets, time.Duration(mins)*time.Minute)
	}

	m := ui.New(coord, engine, tracks, exports, presets, cfg.SkipInterval())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	// Persist the final position before teardown.
	engine.Pause()
	return nil
}

// newLogger writes structured logs to the XDG state directory, or
// discards them when that fails.
func newLogger() *log.Logger {
	path, err := xdg.StateFile(filepath.Join("pickup", "pickup.log"))
	if err != nil {
		return log.New(io.Discard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard)
	}
	logger := log.New(f)
	logger.SetReportTimestamp(true)
	logger.SetLevel(log.InfoLevel)
	return logger
}
