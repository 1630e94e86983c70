// Package storage implements the database.Store interface for persisting
// ledger snapshots, either on disk as a single JSON document or in memory
// for testing.
package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/medchain/medchain/foundation/ledger/database"
)

// Disk reads and writes the snapshot as one JSON document on disk. Each save
// overwrites the previous snapshot in full. This implements the
// database.Store interface.
type Disk struct {
	path string
}

// NewDisk constructs a Disk store writing to the specified file path.
func NewDisk(path string) (*Disk, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Disk{path: path}, nil
}

// Save writes the snapshot to disk, replacing any prior snapshot.
func (d *Disk) Save(snapshot database.Snapshot) error {

	// Marshal the snapshot in a more human readable format.
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(d.path, data, 0600)
}

// Load reads the snapshot from disk. The exists return is false when no
// snapshot file has been written yet.
func (d *Disk) Load() (database.Snapshot, bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.Snapshot{}, false, nil
		}
		return database.Snapshot{}, false, err
	}

	var snapshot database.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return database.Snapshot{}, true, err
	}

	return snapshot, true, nil
}

// Reset removes the snapshot from disk.
func (d *Disk) Reset() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
