// internal/player/interface.go
package player

import "time"

// Interface defines the output engine contract for dependency injection
// and testing.
type Interface interface {
	Load(path string) (time.Duration, error)
	Start()
	Pause()
	Stop()
	State() State
	Position() time.Duration
	Duration() time.Duration
	SetPosition(pos time.Duration)
	SetGain(level float64)
	FinishedChan() <-chan struct{}
}
