// Package nowplaying defines the snapshot published to the system
// now-playing surface.
package nowplaying

import (
	"time"

	"github.com/llehouerou/pickup/internal/timefmt"
)

// Snapshot is the full now-playing state, recomputed on every relevant
// change and published whole; the surface never receives diffs.
type Snapshot struct {
	Title    string
	Duration time.Duration
	Elapsed  time.Duration
	Playing  bool
	Artwork  []byte // optional

	// SleepRemaining overlays a countdown in the surface's secondary text
	// field. Zero or negative means no timer: the field is omitted, not
	// blanked.
	SleepRemaining time.Duration
}

// Rate returns the playback rate the surface expects: 1.0 when playing,
// 0.0 otherwise.
func (s Snapshot) Rate() float64 {
	if s.Playing {
		return 1.0
	}
	return 0.0
}

// CountdownText returns the sleep-timer overlay ("🌙 MM:SS"), or the empty
// string when no timer is running.
func (s Snapshot) CountdownText() string {
	if s.SleepRemaining <= 0 {
		return ""
	}
	return "🌙 " + timefmt.Countdown(s.SleepRemaining)
}

// Publisher is the single entry point to the process-wide now-playing
// surface. No component writes to the surface directly.
type Publisher interface {
	Publish(Snapshot)
	Clear()
}

// Noop discards snapshots. Used when no surface is available.
type Noop struct{}

func (Noop) Publish(Snapshot) {}
func (Noop) Clear()           {}

// Verify Noop implements Publisher at compile time.
var _ Publisher = Noop{}
