package export

import "time"

// Status is an export job's lifecycle state.
type Status int

const (
	StatusWaiting Status = iota
	StatusExporting
	StatusCompleted
	StatusFailed
)

// String returns the status name for display.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusExporting:
		return "exporting"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobID identifies a job by arena slot plus generation. A released slot
// bumps its generation, so an ID held across a reuse goes stale instead of
// aliasing the new occupant.
type JobID struct {
	Slot int
	Gen  uint32
}

// Job is a point-in-time view of one export job.
type Job struct {
	ID         JobID
	SourcePath string
	OutputPath string
	Name       string // sanitized output base name
	Status     Status
	Progress   float64 // 0..1, monotonic per job
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}
