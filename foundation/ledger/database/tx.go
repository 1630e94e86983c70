package database

import (
	"time"

	"github.com/medchain/medchain/foundation/ledger/digest"
)

// Field names the engine assigns or inspects on a transaction. Everything
// else in the payload is opaque, application defined data.
const (
	FieldTxID      = "tx_id"
	FieldType      = "type"
	FieldTimestamp = "timestamp"
)

// Tx represents a transaction recorded inside the ledger. The payload is a
// mapping of opaque fields owned by the caller plus the two engine assigned
// fields, timestamp and tx_id.
type Tx map[string]any

// NewTx constructs an admitted transaction from the specified payload. A
// timestamp is assigned if the payload doesn't carry one and the tx_id is
// the canonical hash of the transaction minus the tx_id field itself.
func NewTx(payload Tx) Tx {
	tx := payload.Clone()

	if _, exists := tx[FieldTimestamp]; !exists {
		tx[FieldTimestamp] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	tx[FieldTxID] = digest.Hash(tx)

	return tx
}

// ID returns the engine assigned transaction id.
func (tx Tx) ID() string {
	id, _ := tx[FieldTxID].(string)
	return id
}

// Type returns the application defined transaction type.
func (tx Tx) Type() string {
	typ, _ := tx[FieldType].(string)
	return typ
}

// Timestamp returns the admission timestamp.
func (tx Tx) Timestamp() string {
	ts, _ := tx[FieldTimestamp].(string)
	return ts
}

// Clone returns a deep copy of the transaction so callers can't mutate
// admitted or sealed state through a shared reference.
func (tx Tx) Clone() Tx {
	return cloneMap(tx)
}

// =============================================================================

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Tx:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
