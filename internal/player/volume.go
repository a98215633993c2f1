package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetGain sets the output level (0.0 to 1.0). Used by the fade-out path;
// a fresh Load always starts back at full level.
func (p *Player) SetGain(level float64) {
	if p.volume == nil {
		return
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	speaker.Lock()
	p.volume.Silent = level <= 0
	p.volume.Volume = levelToVolume(level)
	speaker.Unlock()
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale with base 2 where 0 means no change,
// -1 half volume, -2 quarter volume. 0 maps to silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
