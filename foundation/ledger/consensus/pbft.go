package consensus

import (
	"encoding/json"
	"fmt"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/digest"
)

// minValidators is the smallest validator set that can tolerate one
// byzantine member.
const minValidators = 4

// Evaluator defines the function each validator runs against a candidate
// block to produce its vote. The default evaluator checks the candidate
// extends the current head and that every transaction carries the required
// fields. Supplying a custom evaluator allows faulty or byzantine
// validators to be modeled.
type Evaluator func(validator string, candidate database.Block, head database.Block, height int) bool

// PBFTOption configures optional behavior on the PBFT strategy.
type PBFTOption func(*PBFT)

// WithEvaluator overrides the vote evaluation function.
func WithEvaluator(evaluate Evaluator) PBFTOption {
	return func(p *PBFT) {
		p.evaluate = evaluate
	}
}

// PBFT seals blocks through a byzantine quorum vote. A round robin proposer
// builds the candidate, every validator votes independently and the block
// is accepted when the affirmative votes reach floor(2N/3)+1.
type PBFT struct {
	validators  []string
	proposerIdx int
	evaluate    Evaluator
	ev          EvHandler
}

// NewPBFT constructs a PBFT strategy over the specified validator set.
func NewPBFT(validators []string, ev EvHandler, opts ...PBFTOption) (*PBFT, error) {
	if len(validators) < minValidators {
		return nil, ErrInsufficientValidators
	}

	p := PBFT{
		validators: append([]string(nil), validators...),
		evaluate:   defaultEvaluate,
		ev:         safeEv(ev),
	}

	for _, opt := range opts {
		opt(&p)
	}

	return &p, nil
}

// Name returns the registry name of the strategy.
func (p *PBFT) Name() string {
	return KindPBFT
}

// Validators returns a copy of the validator set.
func (p *PBFT) Validators() []string {
	return append([]string(nil), p.validators...)
}

// Genesis constructs the synthetic first block, proposed by the system and
// carrying an affirmative vote from every validator.
func (p *PBFT) Genesis() database.Block {
	votes := make(map[string]bool, len(p.validators))
	for _, v := range p.validators {
		votes[v] = true
	}

	block := database.NewBlock(0, []database.Tx{genesisTx("quorum vote anchoring ledger genesis block")}, database.GenesisPrevHash)
	block.Proposer = "system"
	block.Votes = votes
	block.Hash = p.BlockDigest(block)

	return block
}

// Finalize runs one voting round: the next proposer builds the candidate,
// every validator votes and the block is sealed on quorum. On a failed
// quorum the pending batch is left for the caller to retry; the proposer
// cursor has already moved on.
func (p *PBFT) Finalize(pending []database.Tx, head database.Block, height int) (database.Block, error) {
	proposer := p.nextProposer()

	candidate := database.NewBlock(height, pending, head.Hash)
	candidate.Proposer = proposer

	votes := make(map[string]bool, len(p.validators))
	yes := 0
	for _, v := range p.validators {
		votes[v] = p.evaluate(v, candidate, head, height)
		if votes[v] {
			yes++
		}
	}
	candidate.Votes = votes

	if yes < p.quorum() {
		p.ev("consensus: pbft: blk[%d]: proposer %q: votes %d/%d below quorum %d", height, proposer, yes, len(p.validators), p.quorum())
		return database.Block{}, fmt.Errorf("block %d, proposer %q, %d of %d votes: %w", height, proposer, yes, len(p.validators), ErrConsensusNotReached)
	}

	candidate.Hash = p.BlockDigest(candidate)
	p.ev("consensus: pbft: blk[%d]: sealed by proposer %q with %d/%d votes", height, proposer, yes, len(p.validators))

	return candidate, nil
}

// nextProposer returns the validator whose turn it is and advances the
// round robin cursor.
func (p *PBFT) nextProposer() string {
	proposer := p.validators[p.proposerIdx]
	p.proposerIdx = (p.proposerIdx + 1) % len(p.validators)
	return proposer
}

// quorum returns the minimum count of affirmative votes.
func (p *PBFT) quorum() int {
	return (2*len(p.validators))/3 + 1
}

// VerifyBlock recomputes the quorum from the vote map stored in the block.
func (p *PBFT) VerifyBlock(block database.Block) error {
	yes := 0
	for _, vote := range block.Votes {
		if vote {
			yes++
		}
	}

	if yes < p.quorum() {
		return fmt.Errorf("block %d has %d of %d required votes", block.Index, yes, p.quorum())
	}

	return nil
}

// BlockDigest recomputes the block hash. The vote map is excluded so votes
// recorded after the candidate was built don't change the hash the
// validators voted on.
func (p *PBFT) BlockDigest(block database.Block) string {
	return digest.Hash(map[string]any{
		"index":         block.Index,
		"transactions":  block.Transactions,
		"previous_hash": block.PrevHash,
		"proposer":      block.Proposer,
		"timestamp":     block.Timestamp,
	})
}

// SaveState writes the validator list and proposer cursor into the snapshot.
func (p *PBFT) SaveState(snapshot *database.Snapshot) {
	data, _ := json.Marshal(p.validators)
	snapshot.Validators = data
	snapshot.CurrentProposerIndex = p.proposerIdx
}

// RestoreState reads the validator list and proposer cursor from the
// snapshot. A snapshot without a validator list keeps the constructed set.
func (p *PBFT) RestoreState(snapshot database.Snapshot) error {
	if len(snapshot.Validators) > 0 {
		var validators []string
		if err := json.Unmarshal(snapshot.Validators, &validators); err != nil {
			return fmt.Errorf("decoding validator list: %w", err)
		}
		if len(validators) < minValidators {
			return ErrInsufficientValidators
		}
		p.validators = validators
	}

	if snapshot.CurrentProposerIndex >= 0 && snapshot.CurrentProposerIndex < len(p.validators) {
		p.proposerIdx = snapshot.CurrentProposerIndex
	}

	return nil
}

// =============================================================================

// defaultEvaluate is the honest validator check: the candidate must extend
// the current head and every transaction must carry the required fields.
func defaultEvaluate(validator string, candidate database.Block, head database.Block, height int) bool {
	if candidate.PrevHash != head.Hash {
		return false
	}

	if candidate.Index != height {
		return false
	}

	for _, tx := range candidate.Transactions {
		if tx.Type() == "" || tx.Timestamp() == "" {
			return false
		}
	}

	return true
}
