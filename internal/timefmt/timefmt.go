// Package timefmt formats durations for display.
package timefmt

import (
	"fmt"
	"time"
)

// Duration formats a duration as "H:MM:SS" when it reaches an hour,
// otherwise "M:SS". Minutes are not zero-padded.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Countdown formats a remaining duration as "MM:SS", both zero-padded.
// Used for the sleep timer overlay in the now-playing surface.
func Countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
