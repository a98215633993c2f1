package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrDurationUnavailable means the file opened but its length could not be
// determined. Callers treat this as duration zero, not as a failure.
var ErrDurationUnavailable = fmt.Errorf("duration unavailable")

// ProbeDuration decodes just enough of the file to determine its duration.
// It never touches the speaker.
func ProbeDuration(path string) (time.Duration, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != extMP3 && ext != extFLAC {
		return 0, ErrDurationUnavailable
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	streamer, format, err := decode(f, ext)
	if err != nil {
		return 0, ErrDurationUnavailable
	}
	defer streamer.Close()

	n := streamer.Len()
	if n <= 0 {
		return 0, ErrDurationUnavailable
	}
	return format.SampleRate.D(n), nil
}
