package playback

import "time"

// StateChange is emitted when the playing flag flips.
type StateChange struct {
	Playing bool
}

// TrackChange is emitted when a track is loaded or the session is cleared.
// Track is nil when nothing is loaded.
type TrackChange struct {
	Track *Track
}

// PositionChange is emitted on every tick, seek, and pause.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an operation fails and is absorbed.
type ErrorEvent struct {
	Operation string // e.g., "load", "play"
	Err       error
}
