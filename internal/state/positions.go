package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SavePosition records the last playback position for a track.
// Writes are last-write-wins; only the playback owner writes here.
func (m *Manager) SavePosition(trackID uuid.UUID, position time.Duration) error {
	_, err := m.db.Exec(`
		INSERT INTO playback_positions (track_id, position_ms, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			position_ms = excluded.position_ms,
			updated_at = excluded.updated_at
	`, trackID.String(), position.Milliseconds(), time.Now().Unix())
	return err
}

// LoadPosition returns the saved playback position for a track,
// or zero if none was recorded.
func (m *Manager) LoadPosition(trackID uuid.UUID) (time.Duration, error) {
	var ms int64
	err := m.db.QueryRow(`
		SELECT position_ms FROM playback_positions WHERE track_id = ?
	`, trackID.String()).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ClearPosition removes the saved position for a track.
func (m *Manager) ClearPosition(trackID uuid.UUID) error {
	_, err := m.db.Exec(`DELETE FROM playback_positions WHERE track_id = ?`, trackID.String())
	return err
}
