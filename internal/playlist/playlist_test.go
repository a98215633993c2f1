package playlist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/pickup/internal/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	m, err := state.OpenAt(filepath.Join(t.TempDir(), "pickup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return NewStore(m.DB())
}

func newTrack(title string) Track {
	return Track{
		ID:       uuid.New(),
		FileName: title + ".mp3",
		Title:    title,
		Duration: 3 * time.Minute,
	}
}

func titles(t *testing.T, s *Store) []string {
	t.Helper()
	tracks, err := s.Tracks()
	require.NoError(t, err)
	out := make([]string, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Title
	}
	return out
}

func TestStore_AddAndOrder(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Add(newTrack("a")))
	require.NoError(t, s.Add(newTrack("b")))
	require.NoError(t, s.Add(newTrack("c")))

	assert.Equal(t, []string{"a", "b", "c"}, titles(t, s))

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_Get(t *testing.T) {
	s := openTestStore(t)
	tr := newTrack("a")
	tr.ArtworkPath = "cover.jpg"
	require.NoError(t, s.Add(tr))

	got, err := s.Get(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Title, got.Title)
	assert.Equal(t, tr.Duration, got.Duration)
	assert.Equal(t, "cover.jpg", got.ArtworkPath)

	_, err = s.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RemoveCompactsPositions(t *testing.T) {
	s := openTestStore(t)
	a, b, c := newTrack("a"), newTrack("b"), newTrack("c")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(c))

	require.NoError(t, s.Remove(b.ID))
	assert.Equal(t, []string{"a", "c"}, titles(t, s))

	// Adding after a removal must not collide with stale positions.
	require.NoError(t, s.Add(newTrack("d")))
	assert.Equal(t, []string{"a", "c", "d"}, titles(t, s))

	assert.ErrorIs(t, s.Remove(b.ID), ErrNotFound)
}

func TestStore_Move(t *testing.T) {
	s := openTestStore(t)
	a, b, c := newTrack("a"), newTrack("b"), newTrack("c")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(c))

	require.NoError(t, s.Move(c.ID, 0))
	assert.Equal(t, []string{"c", "a", "b"}, titles(t, s))

	require.NoError(t, s.Move(c.ID, 2))
	assert.Equal(t, []string{"a", "b", "c"}, titles(t, s))

	// Out-of-range indices clamp.
	require.NoError(t, s.Move(a.ID, 99))
	assert.Equal(t, []string{"b", "c", "a"}, titles(t, s))
}

func TestStore_UpdatePlaybackPosition(t *testing.T) {
	s := openTestStore(t)
	tr := newTrack("a")
	require.NoError(t, s.Add(tr))

	require.NoError(t, s.UpdatePlaybackPosition(tr.ID, 42*time.Second))

	got, err := s.Get(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, got.LastPosition)

	assert.ErrorIs(t, s.UpdatePlaybackPosition(uuid.New(), time.Second), ErrNotFound)
}
