package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// Start begins or resumes output of the loaded track.
func (p *Player) Start() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Pause suspends output. Idempotent.
func (p *Player) Pause() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Stop releases the loaded track and its resources.
func (p *Player) Stop() {
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}

	p.ctrl = nil
	p.volume = nil
	p.duration = 0
	p.state = Stopped
}

// State returns the current engine state.
func (p *Player) State() State { return p.state }

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	// Read without the speaker lock - may be slightly stale but avoids
	// deadlocks; streamer.Position() is safe for concurrent read.
	return p.format.SampleRate.D(p.streamer.Position())
}

// Duration returns the loaded track's duration.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// SetPosition seeks to an absolute position. The caller clamps; values past
// the end signal track completion instead of seeking.
func (p *Player) SetPosition(pos time.Duration) {
	if p.streamer == nil || p.state == Stopped {
		return
	}

	target := p.format.SampleRate.N(pos)
	maxPos := p.streamer.Len()
	if target >= maxPos {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
		return
	}
	target = max(target, 0)

	// Mute during the seek to avoid audible buffer artifacts.
	speaker.Lock()
	if p.streamer == nil || p.volume == nil {
		speaker.Unlock()
		return
	}
	wasSilent := p.volume.Silent
	p.volume.Silent = true
	_ = p.streamer.Seek(target)
	speaker.Unlock()

	time.Sleep(50 * time.Millisecond)

	speaker.Lock()
	if p.volume != nil {
		p.volume.Silent = wasSilent
	}
	speaker.Unlock()
}
