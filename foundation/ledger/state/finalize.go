package state

import (
	"time"

	"github.com/medchain/medchain/foundation/events"
	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
)

// StatusConfirmed is reported in the receipt once the transaction has been
// sealed into an appended block.
const StatusConfirmed = "confirmed"

// Receipt is the upstream collaborator contract returned to the record and
// consent services after a submit and finalize round.
type Receipt struct {
	TxID       string          `json:"tx_id"`
	BlockHash  string          `json:"block_hash"`
	BlockIndex int             `json:"block_index"`
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Validator  string          `json:"validator,omitempty"`
	Proposer   string          `json:"proposer,omitempty"`
	Votes      map[string]bool `json:"votes,omitempty"`
}

// Submit admits a transaction payload into the pending pool. The payload is
// stamped with a timestamp if it doesn't carry one and receives a content
// derived transaction id. The chain is untouched.
func (s *State) Submit(payload database.Tx) string {
	tx := database.NewTx(payload)
	s.mempool.Add(tx)

	s.evHandler("state: submit: tx[%s] admitted, pool size %d", tx.ID(), s.mempool.Count())

	return tx.ID()
}

// Finalize seals the current pending pool into a new block through the
// active consensus strategy. On success the block is appended, the sealed
// transactions leave the pool and the snapshot is saved eagerly. On failure
// the pool is untouched and the caller may retry.
func (s *State) Finalize() (database.Block, error) {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	pending := s.mempool.Snapshot()
	if len(pending) == 0 {
		return database.Block{}, consensus.ErrEmptyPool
	}

	// The state lock is not held during the strategy run so reads stay
	// unblocked while a proof of work search grinds. finalizeMu guarantees
	// the head can't move underneath us.
	s.mu.RLock()
	head := s.chain[len(s.chain)-1]
	height := len(s.chain)
	s.mu.RUnlock()

	block, err := s.strategy.Finalize(pending, head, height)
	if err != nil {
		return database.Block{}, err
	}

	s.mu.Lock()
	s.chain = append(s.chain, block)
	s.mu.Unlock()

	txIDs := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		txIDs[i] = tx.ID()
	}
	s.mempool.Remove(txIDs)

	// A failed save is logged, not fatal: the chain in memory remains the
	// source of truth until the next eager save succeeds.
	if err := s.save(); err != nil {
		s.evHandler("state: finalize: WARNING: snapshot save failed: %s", err)
	}

	s.evHandler("state: finalize: blk[%d] appended with %d transactions, hash[%s]", block.Index, len(block.Transactions), block.Hash)

	if s.evts != nil {
		s.evts.Send(events.Event{
			Kind:       events.KindBlockSealed,
			BlockIndex: block.Index,
			BlockHash:  block.Hash,
			TxIDs:      txIDs,
		})
	}

	return block, nil
}

// SubmitAndFinalize admits the payload and immediately attempts
// finalization. This is the only mode the calling services use; there is no
// deferred scheduling. A finalization failure leaves the transaction
// pending.
func (s *State) SubmitAndFinalize(payload database.Tx) (Receipt, error) {
	txID := s.Submit(payload)

	block, err := s.Finalize()
	if err != nil {
		return Receipt{}, err
	}

	return Receipt{
		TxID:       txID,
		BlockHash:  block.Hash,
		BlockIndex: block.Index,
		Status:     StatusConfirmed,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Validator:  block.Validator,
		Proposer:   block.Proposer,
		Votes:      block.Votes,
	}, nil
}
