package session

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/pickup/internal/importer"
	"github.com/llehouerou/pickup/internal/playback"
	"github.com/llehouerou/pickup/internal/player"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/sleeptimer"
	"github.com/llehouerou/pickup/internal/state"
)

type fixture struct {
	coord  *Coordinator
	engine *playback.Engine
	mock   *player.Mock
	timer  *sleeptimer.Timer
	tracks *playlist.Store
	libDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mgr, err := state.OpenAt(filepath.Join(t.TempDir(), "pickup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	mock := player.NewMock()
	engine := playback.New(mock, mgr, nil)
	t.Cleanup(engine.Close)

	timer := sleeptimer.New()
	t.Cleanup(timer.Cancel)

	tracks := playlist.NewStore(mgr.DB())
	libDir := t.TempDir()
	imports := importer.New(libDir, tracks, nil)

	logger := log.New(io.Discard)
	coord := New(engine, timer, tracks, imports, nil, logger)
	t.Cleanup(coord.Close)

	return &fixture{
		coord:  coord,
		engine: engine,
		mock:   mock,
		timer:  timer,
		tracks: tracks,
		libDir: libDir,
	}
}

func (f *fixture) addTrack(t *testing.T, title string) playlist.Track {
	t.Helper()
	id := uuid.New()
	fileName := id.String() + ".mp3"
	require.NoError(t, os.WriteFile(filepath.Join(f.libDir, fileName), []byte("not audio"), 0o644))
	tr := playlist.Track{ID: id, FileName: fileName, Title: title, Duration: 3 * time.Minute}
	require.NoError(t, f.tracks.Add(tr))
	return tr
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

func TestPlayTrack_LoadsAndStarts(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(3 * time.Minute)
	tr := f.addTrack(t, "Evening Walk")

	require.NoError(t, f.coord.PlayTrack(tr.ID))

	assert.True(t, f.engine.IsPlaying())
	calls := f.mock.LoadCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join(f.libDir, tr.FileName), calls[0])
}

func TestPlayTrack_UnknownID(t *testing.T) {
	f := newFixture(t)

	err := f.coord.PlayTrack(uuid.New())
	require.ErrorIs(t, err, playlist.ErrNotFound)
}

func TestDispatch_RemoteSkipUsesFixedInterval(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(3 * time.Minute)
	tr := f.addTrack(t, "Evening Walk")
	require.NoError(t, f.coord.PlayTrack(tr.ID))

	f.coord.Dispatch(playback.CommandSkipForward)
	assert.Equal(t, 30*time.Second, f.engine.Elapsed())

	f.coord.Dispatch(playback.CommandSkipBackward)
	assert.Equal(t, time.Duration(0), f.engine.Elapsed())
}

func TestDispatch_ToggleFlipsState(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(3 * time.Minute)
	tr := f.addTrack(t, "Evening Walk")
	require.NoError(t, f.coord.PlayTrack(tr.ID))

	f.coord.Dispatch(playback.CommandToggle)
	assert.False(t, f.engine.IsPlaying())

	f.coord.Dispatch(playback.CommandToggle)
	assert.True(t, f.engine.IsPlaying())
}

func TestSleepTimer_ArmAndCancel(t *testing.T) {
	f := newFixture(t)

	f.coord.StartSleepTimer(10 * time.Minute)
	assert.True(t, f.coord.SleepActive())
	assert.InDelta(t, (10 * time.Minute).Seconds(), f.coord.SleepRemaining().Seconds(), 1)

	f.coord.CancelSleepTimer()
	assert.False(t, f.coord.SleepActive())
	assert.Equal(t, time.Duration(0), f.coord.SleepRemaining())
}

func TestSleepTimer_ExpiryFadesPlaybackOut(t *testing.T) {
	f := newFixture(t)
	f.engine.SetFadeWindow(40 * time.Millisecond)
	f.mock.SetDuration(3 * time.Minute)
	tr := f.addTrack(t, "Evening Walk")
	require.NoError(t, f.coord.PlayTrack(tr.ID))

	f.coord.StartSleepTimer(50 * time.Millisecond)

	waitUntil(t, func() bool { return !f.engine.IsPlaying() }, "playback never stopped after expiry")
	assert.False(t, f.coord.SleepActive())
	assert.True(t, f.engine.IsLoaded(), "session cleared instead of paused")
}

func TestSleepTimer_NonPositiveDurationCancels(t *testing.T) {
	f := newFixture(t)

	f.coord.StartSleepTimer(10 * time.Minute)
	f.coord.StartSleepTimer(0)
	assert.False(t, f.coord.SleepActive())
}

func TestMirror_PausedPositionReachesPlaylistRow(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(3 * time.Minute)
	tr := f.addTrack(t, "Evening Walk")
	require.NoError(t, f.coord.PlayTrack(tr.ID))

	f.mock.SetPositionValue(80 * time.Second)
	f.coord.Dispatch(playback.CommandPause)

	waitUntil(t, func() bool {
		row, err := f.tracks.Get(tr.ID)
		return err == nil && row.LastPosition == 80*time.Second
	}, "paused position never mirrored into the playlist row")
}

func TestAddExported_RegistersNewPlaylistEntry(t *testing.T) {
	f := newFixture(t)

	exported := filepath.Join(t.TempDir(), "NightDrive.mp3")
	require.NoError(t, os.WriteFile(exported, []byte("mp3"), 0o644))

	require.NoError(t, f.coord.AddExported(exported))

	n, err := f.tracks.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
