//go:build !linux

package mpris

import (
	"github.com/llehouerou/pickup/internal/nowplaying"
	"github.com/llehouerou/pickup/internal/playback"
)

// Bridge is a no-op on non-Linux platforms.
type Bridge struct {
	commands chan playback.Command
}

// New returns a no-op bridge on non-Linux platforms.
func New() (*Bridge, error) {
	return &Bridge{commands: make(chan playback.Command)}, nil
}

// Commands returns a channel that never yields.
func (b *Bridge) Commands() <-chan playback.Command {
	return b.commands
}

// Publish is a no-op on non-Linux platforms.
func (b *Bridge) Publish(_ nowplaying.Snapshot) {}

// Clear is a no-op on non-Linux platforms.
func (b *Bridge) Clear() {}

// Close is a no-op on non-Linux platforms.
func (b *Bridge) Close() error {
	return nil
}

// Verify Bridge implements Publisher at compile time.
var _ nowplaying.Publisher = (*Bridge)(nil)
