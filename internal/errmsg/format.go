// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackLoad  Op = "load track"
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Playlist operations
	OpPlaylistLoad   Op = "load playlist"
	OpPlaylistAdd    Op = "add track to playlist"
	OpPlaylistRemove Op = "remove track from playlist"
	OpPlaylistMove   Op = "move playlist item"

	// Import operations
	OpImportFile Op = "import file"
	OpImportTags Op = "read file tags"

	// Export operations
	OpExportConvert Op = "convert media"

	// Artwork operations
	OpArtworkSave Op = "save artwork"
	OpArtworkLoad Op = "load artwork"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
