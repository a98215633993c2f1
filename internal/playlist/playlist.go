// Package playlist stores the user's ordered track list.
package playlist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/pickup/internal/db"
)

// ErrNotFound is returned when a track id is not in the playlist.
var ErrNotFound = errors.New("track not found")

// Store provides ordered playlist persistence over the state database.
type Store struct {
	sqldb *sql.DB
}

// NewStore creates a playlist store on the given database handle.
func NewStore(sqldb *sql.DB) *Store {
	return &Store{sqldb: sqldb}
}

// Add appends a track to the end of the playlist.
func (s *Store) Add(t Track) error {
	return db.WithTx(s.sqldb, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_tracks`).Scan(&next); err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		_, err := tx.Exec(`
			INSERT INTO playlist_tracks (id, position, file_name, title, duration_ms, last_position_ms, artwork_path, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID.String(), next, t.FileName, t.Title, t.Duration.Milliseconds(),
			t.LastPosition.Milliseconds(), nullable(t.ArtworkPath), time.Now().Unix())
		if err != nil {
			return fmt.Errorf("insert track: %w", err)
		}
		return nil
	})
}

// Tracks returns all tracks in playlist order.
func (s *Store) Tracks() ([]Track, error) {
	rows, err := s.sqldb.Query(`
		SELECT id, file_name, title, duration_ms, last_position_ms, artwork_path
		FROM playlist_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Get returns a single track by id.
func (s *Store) Get(id uuid.UUID) (Track, error) {
	row := s.sqldb.QueryRow(`
		SELECT id, file_name, title, duration_ms, last_position_ms, artwork_path
		FROM playlist_tracks
		WHERE id = ?
	`, id.String())
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Track{}, ErrNotFound
	}
	return t, err
}

// Remove deletes a track and compacts the remaining positions.
func (s *Store) Remove(id uuid.UUID) error {
	return db.WithTx(s.sqldb, func(tx *sql.Tx) error {
		var pos int
		err := tx.QueryRow(`SELECT position FROM playlist_tracks WHERE id = ?`, id.String()).Scan(&pos)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("delete track: %w", err)
		}
		// Shift everything after the removed row up by one. The negation
		// dance keeps the UNIQUE(position) constraint satisfied mid-update.
		if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 1 WHERE position > ?`, pos); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 2 WHERE position < 0`); err != nil {
			return err
		}
		return nil
	})
}

// Move relocates a track to a new index within the playlist.
func (s *Store) Move(id uuid.UUID, newIndex int) error {
	return db.WithTx(s.sqldb, func(tx *sql.Tx) error {
		var count, oldPos int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM playlist_tracks`).Scan(&count); err != nil {
			return err
		}
		err := tx.QueryRow(`SELECT position FROM playlist_tracks WHERE id = ?`, id.String()).Scan(&oldPos)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex >= count {
			newIndex = count - 1
		}
		if newIndex == oldPos {
			return nil
		}

		// Park the moving row outside the position range.
		if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -1 WHERE id = ?`, id.String()); err != nil {
			return err
		}
		if newIndex < oldPos {
			// Moving up: shift [newIndex, oldPos) down by one.
			if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 2 WHERE position >= ? AND position < ?`, newIndex, oldPos); err != nil {
				return err
			}
			if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 1 WHERE position < -1`); err != nil {
				return err
			}
		} else {
			// Moving down: shift (oldPos, newIndex] up by one.
			if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 2 WHERE position > ? AND position <= ?`, oldPos, newIndex); err != nil {
				return err
			}
			if _, err := tx.Exec(`UPDATE playlist_tracks SET position = -position - 3 WHERE position < -1`); err != nil {
				return err
			}
		}
		_, err = tx.Exec(`UPDATE playlist_tracks SET position = ? WHERE id = ?`, newIndex, id.String())
		return err
	})
}

// UpdatePlaybackPosition pushes a playback position back onto the stored
// track. The playback core never mutates playlist rows directly; it calls
// this after pausing or switching tracks.
func (s *Store) UpdatePlaybackPosition(id uuid.UUID, position time.Duration) error {
	res, err := s.sqldb.Exec(`
		UPDATE playlist_tracks SET last_position_ms = ? WHERE id = ?
	`, position.Milliseconds(), id.String())
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of tracks in the playlist.
func (s *Store) Len() (int, error) {
	var n int
	err := s.sqldb.QueryRow(`SELECT COUNT(*) FROM playlist_tracks`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var (
		t          Track
		idStr      string
		durMs      int64
		lastMs     int64
		artworkNul sql.NullString
	)
	if err := row.Scan(&idStr, &t.FileName, &t.Title, &durMs, &lastMs, &artworkNul); err != nil {
		return Track{}, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Track{}, fmt.Errorf("parse track id: %w", err)
	}
	t.ID = id
	t.Duration = time.Duration(durMs) * time.Millisecond
	t.LastPosition = time.Duration(lastMs) * time.Millisecond
	t.ArtworkPath = db.NullStringValue(artworkNul)
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
