//go:build linux

// Package mpris exposes the now-playing surface over D-Bus and feeds
// remote control commands back into playback.
package mpris

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/pickup/internal/nowplaying"
	"github.com/llehouerou/pickup/internal/playback"
)

const commandBufferSize = 8

// Bridge is the process-wide now-playing surface. Snapshots are published
// whole and re-read by the MPRIS server on demand; remote commands arrive
// on the Commands channel for the coordinator to dispatch.
type Bridge struct {
	mu      sync.Mutex
	snap    nowplaying.Snapshot
	hasSnap bool

	server   *server.Server
	commands chan playback.Command

	coverPath string
	coverHash uint64
}

// New creates and starts the bridge. The D-Bus name is registered in the
// background; publishing before registration completes is safe.
func New() (*Bridge, error) {
	b := &Bridge{
		commands: make(chan playback.Command, commandBufferSize),
	}
	b.server = server.NewServer("pickup", &rootAdapter{}, &playerAdapter{bridge: b})

	go func() {
		_ = b.server.Listen()
	}()

	return b, nil
}

// Commands returns the inbound remote command stream.
func (b *Bridge) Commands() <-chan playback.Command {
	return b.commands
}

// Publish replaces the surface state with the given snapshot.
func (b *Bridge) Publish(snap nowplaying.Snapshot) {
	b.mu.Lock()
	b.snap = snap
	b.hasSnap = true
	b.updateCoverLocked(snap.Artwork)
	b.mu.Unlock()
}

// Clear removes all state from the surface.
func (b *Bridge) Clear() {
	b.mu.Lock()
	b.snap = nowplaying.Snapshot{}
	b.hasSnap = false
	b.mu.Unlock()
}

// Close stops the D-Bus server and removes the cover cache file.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.coverPath != "" {
		os.Remove(b.coverPath)
		b.coverPath = ""
	}
	b.mu.Unlock()
	return b.server.Stop()
}

func (b *Bridge) current() (nowplaying.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap, b.hasSnap
}

func (b *Bridge) coverURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.coverPath == "" {
		return ""
	}
	return "file://" + b.coverPath
}

// updateCoverLocked writes the snapshot artwork to the cover cache file,
// skipping the write when the bytes are unchanged.
func (b *Bridge) updateCoverLocked(artwork []byte) {
	if len(artwork) == 0 {
		if b.coverPath != "" {
			os.Remove(b.coverPath)
			b.coverPath = ""
			b.coverHash = 0
		}
		return
	}

	h := fnv.New64a()
	h.Write(artwork)
	sum := h.Sum64()
	if sum == b.coverHash && b.coverPath != "" {
		return
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("pickup-cover-%d.jpg", os.Getpid()))
	if err := os.WriteFile(path, artwork, 0o600); err != nil {
		return
	}
	b.coverPath = path
	b.coverHash = sum
}

// send queues a remote command without blocking the D-Bus handler.
func (b *Bridge) send(cmd playback.Command) {
	select {
	case b.commands <- cmd:
	default:
	}
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Pickup", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter over the
// bridge's snapshot. Remote transport maps onto the five playback
// commands; Next and Previous become fixed-interval skips.
type playerAdapter struct {
	bridge *Bridge
}

func (p *playerAdapter) Next() error {
	p.bridge.send(playback.CommandSkipForward)
	return nil
}

func (p *playerAdapter) Previous() error {
	p.bridge.send(playback.CommandSkipBackward)
	return nil
}

func (p *playerAdapter) Pause() error {
	p.bridge.send(playback.CommandPause)
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.bridge.send(playback.CommandToggle)
	return nil
}

func (p *playerAdapter) Stop() error {
	p.bridge.send(playback.CommandPause)
	return nil
}

func (p *playerAdapter) Play() error {
	p.bridge.send(playback.CommandPlay)
	return nil
}

func (p *playerAdapter) Seek(_ types.Microseconds) error {
	return nil // Not supported; remote skips are fixed-interval
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil // Not supported
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	snap, ok := p.bridge.current()
	if !ok {
		return types.PlaybackStatusStopped, nil
	}
	if snap.Playing {
		return types.PlaybackStatusPlaying, nil
	}
	return types.PlaybackStatusPaused, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	snap, _ := p.bridge.current()
	return snap.Rate(), nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap, ok := p.bridge.current()
	if !ok {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(snap.Title)),
		Length:  types.Microseconds(snap.Duration.Microseconds()),
		Title:   snap.Title,
	}

	// The sleep countdown rides in the artist field.
	if overlay := snap.CountdownText(); overlay != "" {
		meta.Artist = []string{overlay}
	}

	if url := p.bridge.coverURL(); url != "" {
		meta.ArtUrl = url
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	snap, _ := p.bridge.current()
	return snap.Elapsed.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	_, ok := p.bridge.current()
	return ok, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, ok := p.bridge.current()
	return ok, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, ok := p.bridge.current()
	return ok, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(title string) string {
	h := fnv.New64a()
	h.Write([]byte(title))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

// Verify Bridge implements Publisher at compile time.
var _ nowplaying.Publisher = (*Bridge)(nil)
