package playback

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/pickup/internal/nowplaying"
	"github.com/llehouerou/pickup/internal/player"
)

// ErrSourceUnavailable is returned by Load when the track's backing file
// cannot be read. The engine clears the session and the remote surface
// before returning it.
var ErrSourceUnavailable = errors.New("audio source unavailable")

// PositionStore persists per-track playback positions across sessions.
type PositionStore interface {
	SavePosition(trackID uuid.UUID, pos time.Duration) error
	LoadPosition(trackID uuid.UUID) (time.Duration, error)
}

// ArtworkLoader resolves an artwork token to image bytes for the remote
// surface. A nil loader disables artwork on the surface.
type ArtworkLoader interface {
	Load(token string) ([]byte, error)
}

const (
	defaultTickInterval = time.Second
	defaultFadeWindow   = 2 * time.Second
	fadeSteps           = 20
)

// Engine owns the playback session: the currently loaded track, its
// observable elapsed position, and the playing flag. All mutations go
// through its methods; the tick loop, persistence, and the now-playing
// surface stay consistent because every state change flows from here.
type Engine struct {
	mu      sync.Mutex
	out     player.Interface
	store   PositionStore
	surface nowplaying.Publisher
	artwork ArtworkLoader

	current     *Track
	artworkData []byte
	elapsed     time.Duration
	duration    time.Duration
	playing     bool
	fading      bool

	tickInterval time.Duration
	fadeWindow   time.Duration

	// sleepRemaining, when set, supplies the countdown shown on the
	// surface while a sleep timer is active. Zero means no countdown.
	sleepRemaining func() time.Duration

	tick *tickTask
	done chan struct{}

	subsMu sync.RWMutex
	subs   []*Subscription
}

// New creates an engine over an audio output, a position store, and a
// now-playing surface. The finished watcher runs until Close.
func New(out player.Interface, store PositionStore, surface nowplaying.Publisher) *Engine {
	if surface == nil {
		surface = nowplaying.Noop{}
	}
	e := &Engine{
		out:          out,
		store:        store,
		surface:      surface,
		tickInterval: defaultTickInterval,
		fadeWindow:   defaultFadeWindow,
		done:         make(chan struct{}),
	}
	go e.watchFinished()
	return e
}

// SetArtworkLoader sets the loader used to resolve track artwork tokens.
func (e *Engine) SetArtworkLoader(l ArtworkLoader) {
	e.mu.Lock()
	e.artwork = l
	e.mu.Unlock()
}

// SetFadeWindow overrides the duration of the sleep-timer fade-out.
func (e *Engine) SetFadeWindow(d time.Duration) {
	e.mu.Lock()
	if d > 0 {
		e.fadeWindow = d
	}
	e.mu.Unlock()
}

// SetSleepRemainingFunc sets the source for the surface countdown overlay.
func (e *Engine) SetSleepRemainingFunc(fn func() time.Duration) {
	e.mu.Lock()
	e.sleepRemaining = fn
	e.mu.Unlock()
}

// Subscribe returns a subscription to engine events.
func (e *Engine) Subscribe() *Subscription {
	sub := newSubscription()
	e.subsMu.Lock()
	e.subs = append(e.subs, sub)
	e.subsMu.Unlock()
	return sub
}

// Load replaces the session with the given track, paused at its resume
// position. A track resumes where it left off only when the saved position
// is strictly inside the track; otherwise it starts at zero.
func (e *Engine) Load(t Track) error {
	e.mu.Lock()
	e.stopTickLocked()

	if _, err := os.Stat(t.Path); err != nil {
		e.out.Stop()
		e.clearSessionLocked()
		e.mu.Unlock()
		e.surface.Clear()
		e.emitTrack(nil)
		wrapped := fmt.Errorf("%w: %s", ErrSourceUnavailable, t.Path)
		e.emitError("load", wrapped)
		return wrapped
	}

	dur, err := e.out.Load(t.Path)
	if err != nil {
		e.clearSessionLocked()
		e.mu.Unlock()
		e.surface.Clear()
		e.emitTrack(nil)
		e.emitError("load", err)
		return err
	}
	e.out.SetGain(1)

	tr := t
	e.current = &tr
	e.duration = dur
	e.playing = false
	e.elapsed = 0

	if e.store != nil {
		if saved, err := e.store.LoadPosition(t.ID); err == nil && saved > 0 && saved < dur {
			e.out.SetPosition(saved)
			e.elapsed = saved
		}
	}

	e.artworkData = nil
	if e.artwork != nil && t.ArtworkPath != "" {
		if data, err := e.artwork.Load(t.ArtworkPath); err == nil {
			e.artworkData = data
		}
	}
	e.mu.Unlock()

	e.emitTrack(&tr)
	e.emitPosition(e.Elapsed())
	return nil
}

// Play starts or resumes playback. A no-op when nothing is loaded or when
// already playing.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.surface.Clear()
		return
	}
	if e.playing {
		e.mu.Unlock()
		return
	}
	e.out.Start()
	e.playing = true
	e.startTickLocked()
	e.mu.Unlock()

	e.publish()
	e.emitState(true)
}

// Pause stops playback and persists the current position. Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.current == nil || !e.playing {
		e.mu.Unlock()
		return
	}
	e.stopTickLocked()
	e.out.Pause()
	e.playing = false
	e.elapsed = e.out.Position()
	id, pos := e.current.ID, e.elapsed
	e.mu.Unlock()

	e.savePosition(id, pos)
	e.publish()
	e.emitState(false)
	e.emitPosition(pos)
}

// Toggle flips between playing and paused.
func (e *Engine) Toggle() {
	e.mu.Lock()
	playing := e.playing
	e.mu.Unlock()
	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// SeekTo jumps to an absolute position and persists it immediately,
// regardless of the playing state.
func (e *Engine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	if pos < 0 {
		pos = 0
	}
	e.out.SetPosition(pos)
	e.elapsed = pos
	id := e.current.ID
	e.mu.Unlock()

	e.savePosition(id, pos)
	e.publish()
	e.emitPosition(pos)
}

// SkipForward seeks ahead by delta, clamped to the track end.
func (e *Engine) SkipForward(delta time.Duration) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	pos := e.elapsed + delta
	if pos > e.duration {
		pos = e.duration
	}
	e.mu.Unlock()
	e.SeekTo(pos)
}

// SkipBackward seeks back by delta, clamped to zero.
func (e *Engine) SkipBackward(delta time.Duration) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	pos := e.elapsed - delta
	if pos < 0 {
		pos = 0
	}
	e.mu.Unlock()
	e.SeekTo(pos)
}

// FadeOutAndStop ramps the volume down over the fade window, then pauses,
// persists the position, and clears the remote surface. It blocks for the
// full window and is intended to be called from the sleep timer's expiry
// callback. A no-op when not playing or when a fade is in flight.
func (e *Engine) FadeOutAndStop() {
	e.mu.Lock()
	if e.current == nil || !e.playing || e.fading {
		e.mu.Unlock()
		return
	}
	e.fading = true
	window := e.fadeWindow
	e.mu.Unlock()

	step := window / fadeSteps
	for i := 1; i <= fadeSteps; i++ {
		e.out.SetGain(1 - float64(i)/fadeSteps)
		time.Sleep(step)
	}

	e.mu.Lock()
	e.fading = false
	e.stopTickLocked()
	e.out.Pause()
	e.playing = false
	e.elapsed = e.out.Position()
	e.out.SetGain(1)
	var id uuid.UUID
	pos := e.elapsed
	loaded := e.current != nil
	if loaded {
		id = e.current.ID
	}
	e.mu.Unlock()

	if loaded {
		e.savePosition(id, pos)
	}
	e.surface.Clear()
	e.emitState(false)
	e.emitPosition(pos)
}

// Republish pushes the current snapshot to the surface without changing
// state. The coordinator calls this on sleep timer countdown ticks so the
// overlay stays fresh.
func (e *Engine) Republish() {
	e.publish()
}

// CurrentTrack returns a copy of the loaded track, or nil.
func (e *Engine) CurrentTrack() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	tr := *e.current
	return &tr
}

// Elapsed returns the observable elapsed position.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsed
}

// Duration returns the loaded track's decoded duration, or zero.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// IsPlaying reports whether playback is running.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// IsLoaded reports whether a track is loaded.
func (e *Engine) IsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Close stops the tick loop, the finished watcher, and all subscriptions.
// The audio output is left to its owner.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTickLocked()
	e.mu.Unlock()

	select {
	case <-e.done:
	default:
		close(e.done)
	}

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
}

// watchFinished reacts to natural end-of-track from the audio output:
// the session returns to paused at position zero, the reset is persisted,
// and the surface is republished.
func (e *Engine) watchFinished() {
	for {
		select {
		case <-e.done:
			return
		case <-e.out.FinishedChan():
			e.handleFinished()
		}
	}
}

func (e *Engine) handleFinished() {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	e.stopTickLocked()
	e.playing = false
	e.elapsed = 0
	id := e.current.ID
	path := e.current.Path

	// Reload so a subsequent Play starts the track over from zero.
	if _, err := e.out.Load(path); err != nil {
		e.emitError("reload", err)
	}
	e.out.SetGain(1)
	e.mu.Unlock()

	e.savePosition(id, 0)
	e.publish()
	e.emitState(false)
	e.emitPosition(0)
}

// tickTask is one run of the elapsed-time loop. The stop channel identity
// doubles as the run's identity so a stale goroutine can never act on a
// newer session.
type tickTask struct {
	stop chan struct{}
}

func (e *Engine) startTickLocked() {
	if e.tick != nil {
		return
	}
	t := &tickTask{stop: make(chan struct{})}
	e.tick = t
	go e.runTick(t)
}

func (e *Engine) stopTickLocked() {
	if e.tick == nil {
		return
	}
	close(e.tick.stop)
	e.tick = nil
}

func (e *Engine) runTick(t *tickTask) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			e.handleTick(t)
		}
	}
}

// handleTick runs once per tick: refresh the observable elapsed position,
// persist it, then republish the surface, in that order.
func (e *Engine) handleTick(t *tickTask) {
	e.mu.Lock()
	if e.tick != t || !e.playing || e.current == nil {
		e.mu.Unlock()
		return
	}
	e.elapsed = e.out.Position()
	id, pos := e.current.ID, e.elapsed
	e.mu.Unlock()

	e.savePosition(id, pos)
	e.publish()
	e.emitPosition(pos)
}

func (e *Engine) clearSessionLocked() {
	e.current = nil
	e.artworkData = nil
	e.elapsed = 0
	e.duration = 0
	e.playing = false
}

func (e *Engine) savePosition(id uuid.UUID, pos time.Duration) {
	if e.store == nil {
		return
	}
	if err := e.store.SavePosition(id, pos); err != nil {
		e.emitError("save position", err)
	}
}

// publish pushes the current session snapshot to the now-playing surface,
// or clears it when nothing is loaded.
func (e *Engine) publish() {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.surface.Clear()
		return
	}
	snap := nowplaying.Snapshot{
		Title:    e.current.Title,
		Duration: e.duration,
		Elapsed:  e.elapsed,
		Playing:  e.playing,
		Artwork:  e.artworkData,
	}
	if e.sleepRemaining != nil {
		snap.SleepRemaining = e.sleepRemaining()
	}
	e.mu.Unlock()
	e.surface.Publish(snap)
}

func (e *Engine) emitState(playing bool) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(StateChange{Playing: playing})
	}
}

func (e *Engine) emitTrack(t *Track) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendTrack(TrackChange{Track: t})
	}
}

func (e *Engine) emitPosition(pos time.Duration) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendPosition(pos)
	}
}

func (e *Engine) emitError(op string, err error) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ErrorEvent{Operation: op, Err: err})
	}
}
