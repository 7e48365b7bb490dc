package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/common"
	"github.com/ternarybob/fxrates/internal/interfaces"
)

// Manager owns the Badger-backed cache used for job progress, retry
// counters, and maintenance invalidation. It is the process's single
// handle on the shared KV store.
type Manager struct {
	db     *BadgerDB
	kv     interfaces.KeyValueStorage
	logger arbor.ILogger
}

// NewManager opens the Badger database and wires the KV storage on top of it.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger cache manager initialized")

	return manager, nil
}

// KeyValueStorage returns the shared key/value store.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// DB returns the underlying Badger database wrapper.
func (m *Manager) DB() *BadgerDB {
	return m.db
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
