package consensus

import (
	"fmt"
	"strings"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/digest"
)

// DefaultDifficulty is the number of leading zero hex digits a solved block
// hash must carry when no difficulty is configured.
const DefaultDifficulty = 2

// ProofOfWork seals blocks by searching for a nonce whose block hash starts
// with difficulty zero hex digits. The search is unbounded and CPU bound; it
// runs to completion unconditionally.
type ProofOfWork struct {
	difficulty int
	ev         EvHandler
}

// NewProofOfWork constructs a ProofOfWork strategy for use.
func NewProofOfWork(difficulty int, ev EvHandler) *ProofOfWork {
	if difficulty <= 0 {
		difficulty = DefaultDifficulty
	}

	return &ProofOfWork{
		difficulty: difficulty,
		ev:         safeEv(ev),
	}
}

// Name returns the registry name of the strategy.
func (p *ProofOfWork) Name() string {
	return KindPoW
}

// Difficulty returns the number of leading zero hex digits required.
func (p *ProofOfWork) Difficulty() int {
	return p.difficulty
}

// Genesis constructs and mines the synthetic first block.
func (p *ProofOfWork) Genesis() database.Block {
	block := database.NewBlock(0, []database.Tx{genesisTx("anchoring ledger genesis block")}, database.GenesisPrevHash)
	p.mine(&block)
	return block
}

// Finalize seals the pending batch by mining a new block on top of the head.
func (p *ProofOfWork) Finalize(pending []database.Tx, head database.Block, height int) (database.Block, error) {
	block := database.NewBlock(height, pending, head.Hash)
	p.mine(&block)

	return block, nil
}

// mine performs the nonce search. Pointer semantics are being used since a
// nonce is being discovered.
func (p *ProofOfWork) mine(block *database.Block) {
	p.ev("consensus: pow: mine: blk[%d]: started", block.Index)
	defer p.ev("consensus: pow: mine: blk[%d]: completed", block.Index)

	target := strings.Repeat("0", p.difficulty)

	var attempts uint64
	for block.Nonce = 0; ; block.Nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			p.ev("consensus: pow: mine: blk[%d]: attempts[%d]", block.Index, attempts)
		}

		hash := p.BlockDigest(*block)
		if strings.HasPrefix(hash, target) {
			block.Hash = hash
			p.ev("consensus: pow: mine: blk[%d]: SOLVED: nonce[%d] hash[%s]", block.Index, block.Nonce, hash)
			return
		}
	}
}

// VerifyBlock checks the stored hash solves the difficulty target.
func (p *ProofOfWork) VerifyBlock(block database.Block) error {
	if !strings.HasPrefix(block.Hash, strings.Repeat("0", p.difficulty)) {
		return fmt.Errorf("block %d hash %q does not solve difficulty %d", block.Index, block.Hash, p.difficulty)
	}
	return nil
}

// BlockDigest recomputes the block hash. The nonce is part of the hashed
// fields so the search changes the digest on every attempt.
func (p *ProofOfWork) BlockDigest(block database.Block) string {
	return digest.Hash(map[string]any{
		"index":         block.Index,
		"transactions":  block.Transactions,
		"previous_hash": block.PrevHash,
		"timestamp":     block.Timestamp,
		"nonce":         block.Nonce,
	})
}

// SaveState writes the difficulty into the snapshot.
func (p *ProofOfWork) SaveState(snapshot *database.Snapshot) {
	snapshot.Difficulty = p.difficulty
}

// RestoreState reads the difficulty from the snapshot.
func (p *ProofOfWork) RestoreState(snapshot database.Snapshot) error {
	if snapshot.Difficulty > 0 {
		p.difficulty = snapshot.Difficulty
	}
	return nil
}

// =============================================================================

// genesisTx builds the single transaction carried by a genesis block. The
// admission stamp doubles as the genesis timestamp.
func genesisTx(data string) database.Tx {
	return database.NewTx(database.Tx{
		database.FieldType: "genesis",
		"data":             data,
	})
}
