package state

import (
	"database/sql"
	"errors"

	dbutil "github.com/loophost/rotator/internal/db"
	"github.com/loophost/rotator/internal/playback"
)

func getRotation(db *sql.DB) (*playback.Snapshot, error) {
	var mode int
	var loopID sql.NullString
	row := db.QueryRow(`SELECT mode, loop_item_id FROM rotation_state WHERE id = 1`)
	err := row.Scan(&mode, &loopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT item_id FROM played_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var played []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		played = append(played, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &playback.Snapshot{
		Mode:       playback.Mode(mode),
		LoopItemID: dbutil.NullStringValue(loopID),
		Played:     played,
	}, nil
}

func saveRotation(sqlDB *sql.DB, s playback.Snapshot) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO rotation_state (id, mode, loop_item_id)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				mode = excluded.mode,
				loop_item_id = excluded.loop_item_id
		`, int(s.Mode), s.LoopItemID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`DELETE FROM played_items`)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO played_items (item_id) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range s.Played {
			if _, err := stmt.Exec(id); err != nil {
				return err
			}
		}
		return nil
	})
}
