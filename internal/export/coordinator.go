// Package export runs playlist-to-file export jobs. Each job converts one
// source track to an MP3 in the export directory; jobs are independent, so
// one failure never blocks or fails the others.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultPruneAfter   = 2 * time.Second
)

// PlaylistSink receives the path of a finished export so it can be offered
// back to the library.
type PlaylistSink interface {
	AddExported(path string) error
}

// Notifier surfaces terminal job states to the desktop.
type Notifier interface {
	Notify(summary, body string)
}

// Coordinator owns the export job table. Submissions run concurrently;
// completed jobs linger briefly and then vanish from the table, failed jobs
// stay until dismissed.
type Coordinator struct {
	mu       sync.Mutex
	conv     Converter
	outDir   string
	jobs     arena
	order    []JobID
	onChange func()
	sink     PlaylistSink
	notifier Notifier

	pollInterval time.Duration
	pruneAfter   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator writing into outDir.
func New(conv Converter, outDir string) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		conv:         conv,
		outDir:       outDir,
		pollInterval: defaultPollInterval,
		pruneAfter:   defaultPruneAfter,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetOnChange registers a callback invoked after any job table change.
// Called without the coordinator lock held.
func (c *Coordinator) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetPlaylistSink registers the destination for completed exports.
func (c *Coordinator) SetPlaylistSink(s PlaylistSink) {
	c.mu.Lock()
	c.sink = s
	c.mu.Unlock()
}

// SetNotifier registers the desktop notifier for terminal job states.
func (c *Coordinator) SetNotifier(n Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

// Submit queues an export of src under the sanitized title and starts it.
// Any previous file with the same output name is replaced when the
// conversion begins; preparation failures fail the job, not the submission.
func (c *Coordinator) Submit(src, title string) JobID {
	name := SanitizeName(title)
	dst := filepath.Join(c.outDir, name+".mp3")

	c.mu.Lock()
	id := c.jobs.alloc(Job{
		SourcePath: src,
		OutputPath: dst,
		Name:       name,
		Status:     StatusWaiting,
		StartedAt:  time.Now(),
	})
	c.order = append(c.order, id)
	c.mu.Unlock()
	c.notifyChange()

	c.wg.Add(1)
	go c.run(id, src, dst)
	return id
}

// Jobs returns a snapshot of the job table in submission order.
func (c *Coordinator) Jobs() []Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Job, 0, len(c.order))
	for _, id := range c.order {
		if j := c.jobs.get(id); j != nil {
			out = append(out, *j)
		}
	}
	return out
}

// Job returns the current view of one job. ok is false when the ID is
// stale or was pruned.
func (c *Coordinator) Job(id JobID) (Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j := c.jobs.get(id)
	if j == nil {
		return Job{}, false
	}
	return *j, true
}

// IsExporting reports whether any job is currently converting. Jobs still
// waiting to start do not count.
func (c *Coordinator) IsExporting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.order {
		if j := c.jobs.get(id); j != nil && j.Status == StatusExporting {
			return true
		}
	}
	return false
}

// Dismiss removes a terminal job from the table. Running jobs cannot be
// dismissed.
func (c *Coordinator) Dismiss(id JobID) bool {
	c.mu.Lock()
	j := c.jobs.get(id)
	if j == nil || !j.Status.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.removeLocked(id)
	c.mu.Unlock()
	c.notifyChange()
	return true
}

// Close stops accepting progress and waits for running jobs' goroutines.
// In-flight conversions are canceled.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Coordinator) run(id JobID, src, dst string) {
	defer c.wg.Done()

	c.update(id, func(j *Job) { j.Status = StatusExporting })

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		c.fail(id, fmt.Errorf("create export directory: %w", err))
		return
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		c.fail(id, fmt.Errorf("replace existing export: %w", err))
		return
	}

	h, err := c.conv.Begin(c.ctx, src, dst)
	if err != nil {
		c.fail(id, err)
		return
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			c.fail(id, c.ctx.Err())
			return
		case err := <-h.Done():
			if err != nil {
				c.fail(id, err)
			} else {
				c.complete(id, dst)
			}
			return
		case <-ticker.C:
			p := h.Progress()
			c.update(id, func(j *Job) {
				if p > j.Progress {
					j.Progress = p
				}
			})
		}
	}
}

func (c *Coordinator) complete(id JobID, dst string) {
	var name string
	c.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 1
		j.FinishedAt = time.Now()
		name = j.Name
	})

	c.mu.Lock()
	sink, notifier, ttl := c.sink, c.notifier, c.pruneAfter
	c.mu.Unlock()

	if sink != nil {
		if err := sink.AddExported(dst); err != nil {
			// The file is exported either way; the job stays completed.
			if notifier != nil {
				notifier.Notify("Export", fmt.Sprintf("%s exported, playlist update failed: %v", name, err))
			}
		}
	}
	if notifier != nil {
		notifier.Notify("Export complete", name+".mp3")
	}

	// Completed rows fall out of the table on their own.
	time.AfterFunc(ttl, func() {
		c.mu.Lock()
		removed := c.removeLocked(id)
		c.mu.Unlock()
		if removed {
			c.notifyChange()
		}
	})
}

func (c *Coordinator) fail(id JobID, err error) {
	var name string
	c.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Err = err
		j.FinishedAt = time.Now()
		name = j.Name
	})

	c.mu.Lock()
	notifier := c.notifier
	c.mu.Unlock()
	if notifier != nil {
		notifier.Notify("Export failed", fmt.Sprintf("%s: %v", name, err))
	}
}

// update applies fn to the live job if the ID is still current, then fires
// the change callback.
func (c *Coordinator) update(id JobID, fn func(*Job)) {
	c.mu.Lock()
	j := c.jobs.get(id)
	if j == nil {
		c.mu.Unlock()
		return
	}
	fn(j)
	c.mu.Unlock()
	c.notifyChange()
}

func (c *Coordinator) removeLocked(id JobID) bool {
	if !c.jobs.release(id) {
		return false
	}
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Coordinator) notifyChange() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
