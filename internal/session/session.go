// Package session wires playback, the sleep timer, the playlist, and the
// export coordinator into one control surface. UI and remote commands both
// land here.
package session

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/llehouerou/pickup/internal/export"
	"github.com/llehouerou/pickup/internal/importer"
	"github.com/llehouerou/pickup/internal/playback"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/sleeptimer"
)

// Coordinator owns the cross-module wiring. It dispatches remote commands
// onto the engine, mirrors paused positions back into playlist rows, and
// keeps the sleep overlay fresh on the now-playing surface.
type Coordinator struct {
	engine  *playback.Engine
	timer   *sleeptimer.Timer
	tracks  *playlist.Store
	imports *importer.Importer
	exports *export.Coordinator
	log     *log.Logger
	done    chan struct{}
}

// New wires the coordinator. exports may be nil when exporting is disabled.
func New(engine *playback.Engine, timer *sleeptimer.Timer, tracks *playlist.Store, imports *importer.Importer, exports *export.Coordinator, logger *log.Logger) *Coordinator {
	c := &Coordinator{
		engine:  engine,
		timer:   timer,
		tracks:  tracks,
		imports: imports,
		exports: exports,
		log:     logger,
		done:    make(chan struct{}),
	}

	engine.SetSleepRemainingFunc(timer.Remaining)
	timer.SetUpdateFunc(func(_ time.Duration, _ bool) {
		engine.Republish()
	})
	if exports != nil {
		exports.SetPlaylistSink(c)
	}

	go c.mirrorPositions()
	return c
}

// DispatchCommands consumes remote commands until the channel closes or
// the coordinator is closed.
func (c *Coordinator) DispatchCommands(cmds <-chan playback.Command) {
	go func() {
		for {
			select {
			case <-c.done:
				return
			case cmd, ok := <-cmds:
				if !ok {
					return
				}
				c.Dispatch(cmd)
			}
		}
	}()
}

// Dispatch applies one remote command to the engine.
func (c *Coordinator) Dispatch(cmd playback.Command) {
	switch cmd {
	case playback.CommandPlay:
		c.engine.Play()
	case playback.CommandPause:
		c.engine.Pause()
	case playback.CommandToggle:
		c.engine.Toggle()
	case playback.CommandSkipForward:
		c.engine.SkipForward(playback.RemoteSkipInterval)
	case playback.CommandSkipBackward:
		c.engine.SkipBackward(playback.RemoteSkipInterval)
	}
}

// PlayTrack loads the playlist track into the engine and starts playback.
func (c *Coordinator) PlayTrack(id uuid.UUID) error {
	t, err := c.tracks.Get(id)
	if err != nil {
		return err
	}
	if err := c.engine.Load(playback.Track{
		ID:          t.ID,
		Path:        c.imports.LibraryPath(t.FileName),
		Title:       t.Title,
		Duration:    t.Duration,
		ArtworkPath: t.ArtworkPath,
	}); err != nil {
		return err
	}
	c.engine.Play()
	return nil
}

// StartSleepTimer arms (or re-arms) the sleep timer. Expiry fades playback
// out and leaves the session paused at the faded position. d <= 0 cancels.
func (c *Coordinator) StartSleepTimer(d time.Duration) {
	if d <= 0 {
		c.CancelSleepTimer()
		return
	}
	c.timer.Start(d, func() {
		c.engine.FadeOutAndStop()
	})
	c.engine.Republish()
}

// CancelSleepTimer disarms the timer and drops the surface overlay.
func (c *Coordinator) CancelSleepTimer() {
	c.timer.Cancel()
	c.engine.Republish()
}

// SleepActive reports whether a sleep timer is armed.
func (c *Coordinator) SleepActive() bool {
	return c.timer.IsActive()
}

// SleepRemaining returns the time left on the armed timer, or zero.
func (c *Coordinator) SleepRemaining() time.Duration {
	return c.timer.Remaining()
}

// ExportTrack submits a playlist track for export.
func (c *Coordinator) ExportTrack(id uuid.UUID) (export.JobID, error) {
	t, err := c.tracks.Get(id)
	if err != nil {
		return export.JobID{}, err
	}
	return c.exports.Submit(c.imports.LibraryPath(t.FileName), t.Title), nil
}

// AddExported registers a finished export as a new playlist entry.
func (c *Coordinator) AddExported(path string) error {
	_, err := c.imports.ImportFile(path)
	return err
}

// Close stops the dispatch and mirror loops. The wired components are
// closed by their owners.
func (c *Coordinator) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// mirrorPositions pushes the engine's position into the playlist row
// whenever playback stops, so the list shows resume points across runs.
func (c *Coordinator) mirrorPositions() {
	sub := c.engine.Subscribe()
	for {
		select {
		case <-c.done:
			return
		case <-sub.Done:
			return
		case ev := <-sub.StateChanged:
			if ev.Playing {
				continue
			}
			tr := c.engine.CurrentTrack()
			if tr == nil {
				continue
			}
			if err := c.tracks.UpdatePlaybackPosition(tr.ID, c.engine.Elapsed()); err != nil {
				c.log.Warn("mirror position", "track", tr.ID, "err", err)
			}
		case ev := <-sub.Error:
			c.log.Error("playback", "op", ev.Operation, "err", ev.Err)
		}
	}
}

// Verify the coordinator can serve as the export sink at compile time.
var _ export.PlaylistSink = (*Coordinator)(nil)
