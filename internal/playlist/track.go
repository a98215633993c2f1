package playlist

import (
	"time"

	"github.com/google/uuid"
)

// Track is one playable audio item in the playlist.
// FileName and ArtworkPath are stored relative to the library and artwork
// directories so the library can move without rewriting rows.
type Track struct {
	ID           uuid.UUID
	FileName     string
	Title        string
	Duration     time.Duration
	LastPosition time.Duration
	ArtworkPath  string // empty when no artwork is cached
}
