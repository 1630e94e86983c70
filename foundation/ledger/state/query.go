package state

import (
	"github.com/medchain/medchain/foundation/ledger/database"
)

// StatusPending marks a query result for a transaction that is admitted but
// not yet sealed into a block.
const StatusPending = "pending"

// TxResult represents the location of a transaction in the ledger. A sealed
// transaction carries its block location; a pending one carries the pending
// status and no location.
type TxResult struct {
	TxID        string      `json:"tx_id"`
	BlockIndex  *int        `json:"block_index"`
	BlockHash   string      `json:"block_hash,omitempty"`
	Transaction database.Tx `json:"transaction"`
	Timestamp   float64     `json:"timestamp,omitempty"`
	Status      string      `json:"status,omitempty"`
}

// LatestBlock returns a copy of the current head of the chain.
func (s *State) LatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[len(s.chain)-1].Clone()
}

// Chain returns a copy of the full chain of blocks.
func (s *State) Chain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]database.Block, len(s.chain))
	for i, block := range s.chain {
		out[i] = block.Clone()
	}
	return out
}

// MempoolLength returns the current length of the pending pool.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// QueryTransaction searches sealed blocks first and then the pending pool
// for the specified transaction id.
func (s *State) QueryTransaction(txID string) (TxResult, bool) {
	s.mu.RLock()
	for _, block := range s.chain {
		if tx, found := block.FindTx(txID); found {
			index := block.Index
			result := TxResult{
				TxID:        txID,
				BlockIndex:  &index,
				BlockHash:   block.Hash,
				Transaction: tx,
				Timestamp:   block.Timestamp,
			}
			s.mu.RUnlock()
			return result, true
		}
	}
	s.mu.RUnlock()

	for _, tx := range s.mempool.Snapshot() {
		if tx.ID() == txID {
			return TxResult{
				TxID:        txID,
				Transaction: tx,
				Status:      StatusPending,
			}, true
		}
	}

	return TxResult{}, false
}

// QueryByType returns all sealed transactions whose type field equals the
// specified type, across all blocks, preserving block order.
func (s *State) QueryByType(txType string) []TxResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []TxResult
	for _, block := range s.chain {
		for _, tx := range block.Transactions {
			if tx.Type() != txType {
				continue
			}

			index := block.Index
			results = append(results, TxResult{
				TxID:        tx.ID(),
				BlockIndex:  &index,
				BlockHash:   block.Hash,
				Transaction: tx.Clone(),
				Timestamp:   block.Timestamp,
			})
		}
	}

	return results
}

// Info represents a summary of the ledger for operators.
type Info struct {
	Strategy        string `json:"strategy"`
	ChainLength     int    `json:"chain_length"`
	PendingTxs      int    `json:"pending_transactions"`
	Difficulty      int    `json:"difficulty,omitempty"`
	Validators      int    `json:"validators_count,omitempty"`
	IsValid         bool   `json:"is_valid"`
	LatestBlockHash string `json:"latest_block_hash"`
}

// Info returns a summary of the current ledger state.
func (s *State) Info() Info {
	info := Info{
		Strategy:        s.strategy.Name(),
		ChainLength:     len(s.Chain()),
		PendingTxs:      s.mempool.Count(),
		IsValid:         s.IsValid(),
		LatestBlockHash: s.LatestBlock().Hash,
	}

	switch st := s.strategy.(type) {
	case interface{ Difficulty() int }:
		info.Difficulty = st.Difficulty()
	case interface{ ValidatorCount() int }:
		info.Validators = st.ValidatorCount()
	case interface{ Validators() []string }:
		info.Validators = len(st.Validators())
	}

	return info
}
