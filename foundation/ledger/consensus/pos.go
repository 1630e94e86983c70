package consensus

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/digest"
)

// SentinelValidator is the identity recorded when a block is sealed with no
// validators registered.
const SentinelValidator = "default_validator"

// ProofOfStake seals blocks by drawing a validator from a stake weighted
// lottery. The draw is not committed to the block, so a reloaded chain
// cannot re-derive that the recorded validator was legitimately selected.
// That is a known limitation of the scheme, not an oversight.
type ProofOfStake struct {
	stakes []Stake
	byID   map[string]int
	ev     EvHandler
}

// NewProofOfStake constructs a ProofOfStake strategy with an empty
// validator table.
func NewProofOfStake(ev EvHandler) *ProofOfStake {
	return &ProofOfStake{
		byID: make(map[string]int),
		ev:   safeEv(ev),
	}
}

// Name returns the registry name of the strategy.
func (p *ProofOfStake) Name() string {
	return KindPoS
}

// AddValidator registers a validator with a positive stake. Registering an
// existing validator updates its stake in place, keeping its position in
// the selection walk.
func (p *ProofOfStake) AddValidator(validator string, stake float64) error {
	if stake <= 0 {
		return fmt.Errorf("validator %q: %w", validator, ErrInvalidStake)
	}

	if i, exists := p.byID[validator]; exists {
		p.stakes[i].Stake = stake
		return nil
	}

	p.byID[validator] = len(p.stakes)
	p.stakes = append(p.stakes, Stake{Validator: validator, Stake: stake})
	p.ev("consensus: pos: validator %q added with stake %v", validator, stake)

	return nil
}

// ValidatorCount returns the number of registered validators.
func (p *ProofOfStake) ValidatorCount() int {
	return len(p.stakes)
}

// Genesis constructs the synthetic first block, attributed to the system.
func (p *ProofOfStake) Genesis() database.Block {
	block := database.NewBlock(0, []database.Tx{genesisTx("stake weighted anchoring ledger genesis block")}, database.GenesisPrevHash)
	block.Validator = "system"
	block.Hash = p.BlockDigest(block)
	return block
}

// Finalize seals the pending batch with the validator drawn for this round.
func (p *ProofOfStake) Finalize(pending []database.Tx, head database.Block, height int) (database.Block, error) {
	block := database.NewBlock(height, pending, head.Hash)
	block.Validator = p.selectValidator()
	block.Hash = p.BlockDigest(block)

	p.ev("consensus: pos: blk[%d]: sealed by validator %q", block.Index, block.Validator)

	return block, nil
}

// selectValidator draws a uniform value in [0, totalStake) and walks the
// validator table in insertion order, accumulating stake until the running
// sum exceeds the draw.
func (p *ProofOfStake) selectValidator() string {
	if len(p.stakes) == 0 {
		return SentinelValidator
	}

	var total float64
	for _, s := range p.stakes {
		total += s.Stake
	}

	draw := uniform() * total

	var current float64
	for _, s := range p.stakes {
		current += s.Stake
		if draw <= current {
			return s.Validator
		}
	}

	return p.stakes[len(p.stakes)-1].Validator
}

// VerifyBlock has no proof to re-check; the lottery is not verifiable.
func (p *ProofOfStake) VerifyBlock(block database.Block) error {
	return nil
}

// BlockDigest recomputes the block hash with the validator identity as part
// of the hashed fields.
func (p *ProofOfStake) BlockDigest(block database.Block) string {
	return digest.Hash(map[string]any{
		"index":         block.Index,
		"transactions":  block.Transactions,
		"previous_hash": block.PrevHash,
		"validator":     block.Validator,
		"timestamp":     block.Timestamp,
	})
}

// SaveState writes the stake table into the snapshot as a JSON object whose
// key order matches the selection walk order.
func (p *ProofOfStake) SaveState(snapshot *database.Snapshot) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range p.stakes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(s.Validator)
		val, _ := json.Marshal(s.Stake)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	snapshot.Validators = buf.Bytes()
}

// RestoreState reads the stake table from the snapshot. The object is
// decoded token by token so the file's key order, which is the insertion
// order at save time, carries over into the selection walk.
func (p *ProofOfStake) RestoreState(snapshot database.Snapshot) error {
	if len(snapshot.Validators) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(snapshot.Validators))

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding stake table: %w", err)
	}

	stakes := make([]Stake, 0)
	byID := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding stake table: %w", err)
		}
		validator, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decoding stake table: key %v is not a string", tok)
		}

		var stake float64
		if err := dec.Decode(&stake); err != nil {
			return fmt.Errorf("decoding stake for validator %q: %w", validator, err)
		}

		byID[validator] = len(stakes)
		stakes = append(stakes, Stake{Validator: validator, Stake: stake})
	}

	p.stakes = stakes
	p.byID = byID

	return nil
}

// =============================================================================

// uniform returns a uniformly distributed value in [0, 1) backed by the
// crypto rand source.
func uniform() float64 {
	const precision = 1 << 53

	n, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return 0
	}

	return float64(n.Int64()) / float64(precision)
}
