package playback

import "time"

// Command is an inbound remote transport command. The remote bridge maps
// the platform's control surface onto this closed set; the coordinator
// dispatches them on the queue that owns playback state.
type Command int

const (
	CommandPlay Command = iota
	CommandPause
	CommandToggle
	CommandSkipForward
	CommandSkipBackward
)

// RemoteSkipInterval is the fixed skip step for remote skip commands.
const RemoteSkipInterval = 30 * time.Second

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "Play"
	case CommandPause:
		return "Pause"
	case CommandToggle:
		return "Toggle"
	case CommandSkipForward:
		return "SkipForward"
	case CommandSkipBackward:
		return "SkipBackward"
	default:
		return "Unknown"
	}
}
