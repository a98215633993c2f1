package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_positions (
			track_id TEXT PRIMARY KEY,
			position_ms INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			file_name TEXT NOT NULL,
			title TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			last_position_ms INTEGER NOT NULL DEFAULT 0,
			artwork_path TEXT,
			added_at INTEGER NOT NULL,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks_position ON playlist_tracks(position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
