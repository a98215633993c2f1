// Package sleeptimer provides a single self-canceling countdown that fires
// one callback at expiry. Starting a new countdown always supersedes the
// old one; the superseded callback never fires.
package sleeptimer

import (
	"sync"
	"time"
)

const defaultInterval = time.Second

// Timer is a one-shot countdown with periodic remaining-time recomputation.
type Timer struct {
	mu        sync.Mutex
	interval  time.Duration
	active    bool
	deadline  time.Time
	remaining time.Duration
	onExpire  func()
	onUpdate  func(remaining time.Duration, active bool)
	stopCh    chan struct{} // owned by the current run; closed on cancel
}

// New creates an inactive timer.
func New() *Timer {
	return &Timer{interval: defaultInterval}
}

// SetUpdateFunc registers a callback invoked whenever the remaining time or
// active flag changes. Called without the timer lock held.
func (t *Timer) SetUpdateFunc(fn func(remaining time.Duration, active bool)) {
	t.mu.Lock()
	t.onUpdate = fn
	t.mu.Unlock()
}

// Start begins a countdown, replacing any countdown already running. The
// replaced callback is discarded and never fires.
func (t *Timer) Start(d time.Duration, onExpire func()) {
	t.mu.Lock()
	t.cancelLocked()

	stop := make(chan struct{})
	t.stopCh = stop
	t.active = true
	t.deadline = time.Now().Add(d)
	t.remaining = d
	t.onExpire = onExpire
	interval := t.interval
	deadline := t.deadline
	t.mu.Unlock()

	t.notify(d, true)
	go t.run(deadline, interval, stop)
}

// Cancel stops the countdown without firing its callback. Canceling an
// inactive timer is a no-op.
func (t *Timer) Cancel() {
	t.mu.Lock()
	wasActive := t.active
	t.cancelLocked()
	t.mu.Unlock()

	if wasActive {
		t.notify(0, false)
	}
}

// IsActive reports whether a countdown is running.
func (t *Timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Remaining returns the time left, or zero when inactive.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return 0
	}
	return t.remaining
}

func (t *Timer) cancelLocked() {
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.active = false
	t.deadline = time.Time{}
	t.remaining = 0
	t.onExpire = nil
}

func (t *Timer) run(deadline time.Time, interval time.Duration, stop chan struct{}) {
	expire := time.NewTimer(time.Until(deadline))
	defer expire.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			t.recompute(stop)
		case <-expire.C:
			t.expire(stop)
			return
		}
	}
}

func (t *Timer) recompute(stop chan struct{}) {
	t.mu.Lock()
	if t.stopCh != stop || !t.active {
		t.mu.Unlock()
		return
	}
	remaining := time.Until(t.deadline)
	if remaining < 0 {
		remaining = 0
	}
	t.remaining = remaining
	t.mu.Unlock()

	t.notify(remaining, true)
}

// expire tears the timer down before invoking the callback, so a callback
// that starts a new countdown is not clobbered by the old run's teardown.
func (t *Timer) expire(stop chan struct{}) {
	t.mu.Lock()
	if t.stopCh != stop {
		// Superseded between firing and locking.
		t.mu.Unlock()
		return
	}
	cb := t.onExpire
	t.stopCh = nil
	t.active = false
	t.deadline = time.Time{}
	t.remaining = 0
	t.onExpire = nil
	t.mu.Unlock()

	t.notify(0, false)
	if cb != nil {
		cb()
	}
}

func (t *Timer) notify(remaining time.Duration, active bool) {
	t.mu.Lock()
	fn := t.onUpdate
	t.mu.Unlock()
	if fn != nil {
		fn(remaining, active)
	}
}
