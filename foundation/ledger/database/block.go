// Package database owns the data types that make up the ledger: transactions,
// blocks and the snapshot document persisted between runs.
package database

import (
	"time"
)

// GenesisPrevHash is the sentinel previous hash carried by the genesis block.
const GenesisPrevHash = "0"

// Block represents a batch of transactions sealed together with a consensus
// proof. Which proof fields are in use depends on the strategy that produced
// the block: Nonce for proof of work, Validator for proof of stake, Proposer
// and Votes for the quorum vote. A block is never mutated once appended.
type Block struct {
	Index        int             `json:"index"`
	Transactions []Tx            `json:"transactions"`
	PrevHash     string          `json:"previous_hash"`
	Timestamp    float64         `json:"timestamp"`
	Nonce        uint64          `json:"nonce,omitempty"`
	Validator    string          `json:"validator,omitempty"`
	Proposer     string          `json:"proposer,omitempty"`
	Votes        map[string]bool `json:"votes,omitempty"`
	Hash         string          `json:"hash"`
}

// NewBlock constructs a candidate block sealing the specified transactions
// on top of the current head. The proof fields and the final hash are filled
// in by the consensus strategy.
func NewBlock(index int, txs []Tx, prevHash string) Block {
	return Block{
		Index:        index,
		Transactions: cloneTxs(txs),
		PrevHash:     prevHash,
		Timestamp:    float64(time.Now().UTC().UnixNano()) / float64(time.Second),
	}
}

// FindTx returns the sealed transaction with the specified id.
func (b Block) FindTx(txID string) (Tx, bool) {
	for _, tx := range b.Transactions {
		if tx.ID() == txID {
			return tx.Clone(), true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	blk := b
	blk.Transactions = cloneTxs(b.Transactions)
	if b.Votes != nil {
		votes := make(map[string]bool, len(b.Votes))
		for k, v := range b.Votes {
			votes[k] = v
		}
		blk.Votes = votes
	}
	return blk
}

func cloneTxs(txs []Tx) []Tx {
	out := make([]Tx, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}
