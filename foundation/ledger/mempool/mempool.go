// Package mempool maintains the pool of admitted, not yet finalized
// transactions. The pool preserves admission order because finalization
// seals the full batch as is, never split or reordered.
package mempool

import (
	"sync"

	"github.com/medchain/medchain/foundation/ledger/database"
)

// Mempool represents the ordered buffer of pending transactions.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new mempool for use.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends an admitted transaction to the pool.
func (mp *Mempool) Add(tx database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)
}

// Snapshot returns a copy of the pool in admission order.
func (mp *Mempool) Snapshot() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	out := make([]database.Tx, len(mp.pool))
	for i, tx := range mp.pool {
		out[i] = tx.Clone()
	}
	return out
}

// Remove drops the transactions with the specified ids from the pool.
// Transactions admitted while a finalization round was in flight stay put.
func (mp *Mempool) Remove(txIDs []string) {
	sealed := make(map[string]struct{}, len(txIDs))
	for _, id := range txIDs {
		sealed[id] = struct{}{}
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	keep := mp.pool[:0]
	for _, tx := range mp.pool {
		if _, exists := sealed[tx.ID()]; !exists {
			keep = append(keep, tx)
		}
	}
	mp.pool = keep
}

// Replace swaps the pool contents. Used when reloading a snapshot.
func (mp *Mempool) Replace(txs []database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make([]database.Tx, len(txs))
	for i, tx := range txs {
		mp.pool[i] = tx.Clone()
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
