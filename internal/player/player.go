// Package player wraps beep's decoder and speaker into an output engine
// with load/start/pause semantics and a gain control for fade-outs.
package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
)

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

type Player struct {
	state      State
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	streamer   beep.StreamSeekCloser
	format     beep.Format
	file       *os.File
	duration   time.Duration
	finishedCh chan struct{}
}

func New() *Player {
	return &Player{
		state:      Stopped,
		finishedCh: make(chan struct{}, 1),
	}
}

// IsAudioFile reports whether the path has a playable extension.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == extMP3 || ext == extFLAC
}

// Load decodes the file and parks it on the speaker, paused at the start.
// Returns the decoded duration. Any previously loaded track is released.
func (p *Player) Load(path string) (time.Duration, error) {
	p.Stop()

	// Drain any stale finish signal from the previous track.
	select {
	case <-p.finishedCh:
	default:
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != extMP3 && ext != extFLAC {
		return 0, fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := decode(f, ext)
	if err != nil {
		f.Close()
		return 0, err
	}

	if !speakerInitialized {
		speakerSampleRate = format.SampleRate
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return 0, err
		}
		speakerInitialized = true
	}

	p.file = f
	p.streamer = streamer
	p.format = format
	p.duration = format.SampleRate.D(streamer.Len())

	// Resample if the track's sample rate differs from the speaker's.
	var playStreamer beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: 0, Silent: false}

	p.state = Paused

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	return p.duration, nil
}

func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return mp3.Decode(f)
	default:
		return flac.Decode(f)
	}
}

// FinishedChan signals once when the loaded track plays to its natural end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
