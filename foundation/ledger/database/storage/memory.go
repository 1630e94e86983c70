package storage

import (
	"encoding/json"
	"sync"

	"github.com/medchain/medchain/foundation/ledger/database"
)

// Memory keeps the snapshot in memory. Used for testing. This implements
// the database.Store interface.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory constructs a Memory store for use.
func NewMemory() *Memory {
	return &Memory{}
}

// Save keeps the marshaled snapshot in memory, replacing any prior snapshot.
// Going through the codec keeps the behavior identical to the disk store.
func (m *Memory) Save(snapshot database.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data
	return nil
}

// Load returns the last saved snapshot.
func (m *Memory) Load() (database.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return database.Snapshot{}, false, nil
	}

	var snapshot database.Snapshot
	if err := json.Unmarshal(m.data, &snapshot); err != nil {
		return database.Snapshot{}, true, err
	}

	return snapshot, true, nil
}

// Reset drops the stored snapshot.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}

// Corrupt replaces the stored snapshot with bytes that won't decode. Test
// support for the load recovery path.
func (m *Memory) Corrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = []byte("{not json")
}
