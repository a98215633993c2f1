package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu       sync.Mutex
	progress float64
	done     chan error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan error, 1)}
}

func (h *fakeHandle) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

func (h *fakeHandle) Done() <-chan error { return h.done }

func (h *fakeHandle) setProgress(p float64) {
	h.mu.Lock()
	h.progress = p
	h.mu.Unlock()
}

func (h *fakeHandle) finish(err error) { h.done <- err }

type fakeConverter struct {
	mu       sync.Mutex
	handles  map[string]*fakeHandle // keyed by source path
	beginErr error
}

func newFakeConverter() *fakeConverter {
	return &fakeConverter{handles: make(map[string]*fakeHandle)}
}

func (c *fakeConverter) Begin(_ context.Context, src, dst string) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if err := os.WriteFile(dst, []byte("mp3"), 0o644); err != nil {
		return nil, err
	}
	h := newFakeHandle()
	c.handles[src] = h
	return h, nil
}

func (c *fakeConverter) handle(src string) *fakeHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles[src]
}

type fakeSink struct {
	mu    sync.Mutex
	paths []string
}

func (s *fakeSink) AddExported(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	return nil
}

func (s *fakeSink) added() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeConverter, string) {
	t.Helper()
	conv := newFakeConverter()
	dir := t.TempDir()
	c := New(conv, dir)
	c.pollInterval = 10 * time.Millisecond
	c.pruneAfter = 100 * time.Millisecond
	t.Cleanup(c.Close)
	return c, conv, dir
}

func waitForJob(t *testing.T, c *Coordinator, id JobID, cond func(Job) bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := c.Job(id); ok && cond(j) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubmit_SanitizesOutputName(t *testing.T) {
	c, _, dir := newTestCoordinator(t)

	id := c.Submit("/tmp/in.flac", "My Song (live)!")

	j, ok := c.Job(id)
	require.True(t, ok)
	assert.Equal(t, "MySonglive", j.Name)
	assert.Equal(t, filepath.Join(dir, "MySonglive.mp3"), j.OutputPath)
}

func TestSubmit_FallsBackWhenTitleSanitizesToNothing(t *testing.T) {
	c, _, dir := newTestCoordinator(t)

	id := c.Submit("/tmp/in.flac", "???")

	j, ok := c.Job(id)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "audio_file.mp3"), j.OutputPath)
}

func TestSubmit_ReplacesExistingOutput(t *testing.T) {
	c, conv, dir := newTestCoordinator(t)

	dst := filepath.Join(dir, "Song.mp3")
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

	id := c.Submit("/tmp/in.flac", "Song")
	waitForJob(t, c, id, func(j Job) bool { return j.Status == StatusExporting }, "job never started")

	// The converter wrote a fresh file over the removed one.
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(data))
	_ = conv
}

func TestSubmit_ReplaceFailureFailsJob(t *testing.T) {
	c, _, dir := newTestCoordinator(t)

	// A non-empty directory in the output's place cannot be removed.
	dst := filepath.Join(dir, "Song.mp3")
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "stuck"), 0o755))

	id := c.Submit("/tmp/in.flac", "Song")

	waitForJob(t, c, id, func(j Job) bool { return j.Status == StatusFailed }, "replace failure never recorded")
	j, _ := c.Job(id)
	assert.ErrorContains(t, j.Err, "replace existing export")
}

func TestIsExporting_IgnoresWaitingJobs(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	c.mu.Lock()
	id := c.jobs.alloc(Job{Name: "Alpha", Status: StatusWaiting})
	c.order = append(c.order, id)
	c.mu.Unlock()

	assert.False(t, c.IsExporting())

	c.mu.Lock()
	c.jobs.get(id).Status = StatusExporting
	c.mu.Unlock()

	assert.True(t, c.IsExporting())
}

func TestJobs_SuccessAndFailureAreIndependent(t *testing.T) {
	c, conv, dir := newTestCoordinator(t)
	sink := &fakeSink{}
	c.SetPlaylistSink(sink)

	idA := c.Submit("/tmp/a.flac", "Alpha")
	idB := c.Submit("/tmp/b.flac", "Beta")

	waitUntil(t, func() bool {
		return conv.handle("/tmp/a.flac") != nil && conv.handle("/tmp/b.flac") != nil
	}, "conversions never started")

	conv.handle("/tmp/a.flac").setProgress(0.5)
	waitForJob(t, c, idA, func(j Job) bool { return j.Progress >= 0.5 }, "progress never observed")

	conv.handle("/tmp/b.flac").finish(errors.New("boom"))
	waitForJob(t, c, idB, func(j Job) bool { return j.Status == StatusFailed }, "failure never recorded")

	// The failed sibling leaves the running job untouched.
	jA, ok := c.Job(idA)
	require.True(t, ok)
	assert.Equal(t, StatusExporting, jA.Status)
	assert.True(t, c.IsExporting())

	conv.handle("/tmp/a.flac").finish(nil)
	waitForJob(t, c, idA, func(j Job) bool { return j.Status == StatusCompleted }, "completion never recorded")

	jA, _ = c.Job(idA)
	assert.Equal(t, 1.0, jA.Progress)
	assert.False(t, c.IsExporting())

	waitUntil(t, func() bool { return len(sink.added()) == 1 }, "completed export never reached the sink")
	assert.Equal(t, filepath.Join(dir, "Alpha.mp3"), sink.added()[0])

	// The failed job stays until dismissed.
	jB, ok := c.Job(idB)
	require.True(t, ok)
	assert.EqualError(t, jB.Err, "boom")
}

func TestCompletedJob_PrunedAfterTTL(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)

	id := c.Submit("/tmp/a.flac", "Alpha")
	waitUntil(t, func() bool { return conv.handle("/tmp/a.flac") != nil }, "conversion never started")

	conv.handle("/tmp/a.flac").finish(nil)
	waitForJob(t, c, id, func(j Job) bool { return j.Status == StatusCompleted }, "completion never recorded")

	waitUntil(t, func() bool {
		_, ok := c.Job(id)
		return !ok
	}, "completed job never pruned")
	assert.Empty(t, c.Jobs())
}

func TestFailedJob_StaysUntilDismissed(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)

	id := c.Submit("/tmp/a.flac", "Alpha")
	waitUntil(t, func() bool { return conv.handle("/tmp/a.flac") != nil }, "conversion never started")

	conv.handle("/tmp/a.flac").finish(errors.New("boom"))
	waitForJob(t, c, id, func(j Job) bool { return j.Status == StatusFailed }, "failure never recorded")

	// Well past the completed-job TTL.
	time.Sleep(300 * time.Millisecond)
	_, ok := c.Job(id)
	assert.True(t, ok, "failed job was pruned")

	assert.True(t, c.Dismiss(id))
	_, ok = c.Job(id)
	assert.False(t, ok)
}

func TestDismiss_RefusesRunningJob(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)

	id := c.Submit("/tmp/a.flac", "Alpha")
	waitUntil(t, func() bool { return conv.handle("/tmp/a.flac") != nil }, "conversion never started")

	assert.False(t, c.Dismiss(id))
	_, ok := c.Job(id)
	assert.True(t, ok)

	conv.handle("/tmp/a.flac").finish(nil)
}

func TestProgress_NeverDecreases(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)

	id := c.Submit("/tmp/a.flac", "Alpha")
	waitUntil(t, func() bool { return conv.handle("/tmp/a.flac") != nil }, "conversion never started")

	h := conv.handle("/tmp/a.flac")
	h.setProgress(0.6)
	waitForJob(t, c, id, func(j Job) bool { return j.Progress >= 0.6 }, "progress never observed")

	h.setProgress(0.3)
	time.Sleep(50 * time.Millisecond)

	j, ok := c.Job(id)
	require.True(t, ok)
	assert.GreaterOrEqual(t, j.Progress, 0.6)

	h.finish(nil)
}

func TestSubmit_BeginFailureFailsJob(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)
	conv.beginErr = errors.New("no ffmpeg")

	id := c.Submit("/tmp/a.flac", "Alpha")

	waitForJob(t, c, id, func(j Job) bool { return j.Status == StatusFailed }, "begin failure never recorded")
	j, _ := c.Job(id)
	assert.ErrorContains(t, j.Err, "no ffmpeg")
}

func TestOnChange_FiresOnSubmission(t *testing.T) {
	c, conv, _ := newTestCoordinator(t)

	var mu sync.Mutex
	changes := 0
	c.SetOnChange(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	c.Submit("/tmp/a.flac", "Alpha")

	mu.Lock()
	n := changes
	mu.Unlock()
	assert.GreaterOrEqual(t, n, 1)

	waitUntil(t, func() bool { return conv.handle("/tmp/a.flac") != nil }, "conversion never started")
	conv.handle("/tmp/a.flac").finish(nil)
}
