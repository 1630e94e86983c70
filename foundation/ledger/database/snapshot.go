package database

import "encoding/json"

// Snapshot is the single document persisted for a ledger instance. The
// Validators field is strategy specific: proof of stake writes an object of
// id to stake, the quorum vote writes an ordered list of ids. The raw bytes
// are owned by the active strategy's save/restore hooks.
type Snapshot struct {
	Chain                []Block         `json:"chain"`
	PendingTransactions  []Tx            `json:"pending_transactions"`
	Difficulty           int             `json:"difficulty,omitempty"`
	Validators           json.RawMessage `json:"validators,omitempty"`
	CurrentProposerIndex int             `json:"current_proposer_index,omitempty"`
}

// Store interface represents the behavior required to be implemented by any
// package providing support for persisting and reloading ledger snapshots.
type Store interface {
	Save(snapshot Snapshot) error
	Load() (snapshot Snapshot, exists bool, err error)
	Reset() error
}
