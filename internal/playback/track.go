package playback

import (
	"time"

	"github.com/google/uuid"
)

// Track is the engine's copy of a playlist track. The engine never mutates
// the playlist's row; position updates flow back through the position store
// and the coordinator's explicit playlist update.
type Track struct {
	ID          uuid.UUID
	Path        string // absolute path to the backing media
	Title       string
	Duration    time.Duration
	ArtworkPath string // artwork store token, optional
}
