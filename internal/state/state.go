// Package state persists rotation state (mode, played set, pinned loop
// item) across sessions in a small sqlite database.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/loophost/rotator/internal/errmsg"
	"github.com/loophost/rotator/internal/playback"
)

const (
	appName      = "rotator"
	dbFileName   = "rotator.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *playback.Snapshot
}

// Open opens (or creates) the state database at the XDG data path.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the state database at an explicit path.
func OpenPath(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close flushes any pending save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveRotation(m.db, *pending); err != nil {
			logrus.Error(errmsg.Format(errmsg.OpStateSave, err))
		}
	}

	return m.db.Close()
}

// SaveRotation records a snapshot, debounced so rapid selection churn does
// not hammer the disk. Never blocks the caller.
func (m *Manager) SaveRotation(s playback.Snapshot) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveRotation(m.db, *pending); err != nil {
				logrus.Error(errmsg.Format(errmsg.OpStateSave, err))
			}
		}
	})
}

// GetRotation loads the last saved snapshot. Returns nil if none saved.
func (m *Manager) GetRotation() (*playback.Snapshot, error) {
	return getRotation(m.db)
}

// Verify Manager implements the controller's persister contract.
var _ playback.Persister = (*Manager)(nil)
