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

		CREATE TABLE IF NOT EXISTS rotation_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			mode INTEGER NOT NULL DEFAULT 0,
			loop_item_id TEXT
		);

		CREATE TABLE IF NOT EXISTS played_items (
			item_id TEXT PRIMARY KEY
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
