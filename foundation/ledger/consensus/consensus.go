// Package consensus provides the block finalization strategies. Three
// strategies share one contract: proof of work, a stake weighted lottery and
// a quorum vote. A strategy seals the full pending batch into a candidate
// block, attaches its proof artifact and computes the block hash over its own
// set of hash fields.
package consensus

import (
	"errors"
	"fmt"

	"github.com/medchain/medchain/foundation/ledger/database"
)

// Set of errors the strategies can return.
var (
	ErrEmptyPool              = errors.New("no pending transactions to seal")
	ErrConsensusNotReached    = errors.New("consensus not reached")
	ErrInvalidStake           = errors.New("stake must be positive")
	ErrInsufficientValidators = errors.New("at least 4 validators are required for fault tolerance")
)

// EvHandler defines a function that is called when events occur during
// consensus processing.
type EvHandler func(v string, args ...any)

// Strategy interface represents the behavior required to be implemented by
// any package providing support for sealing blocks.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Genesis constructs the synthetic first block for a fresh chain.
	Genesis() database.Block

	// Finalize seals the pending batch into a block on top of the head.
	// The height is the current chain length, which becomes the index of
	// the new block. The pool itself is untouched; the caller clears it
	// only on success.
	Finalize(pending []database.Tx, head database.Block, height int) (database.Block, error)

	// VerifyBlock re-checks the proof artifact carried by a sealed block.
	VerifyBlock(block database.Block) error

	// BlockDigest recomputes the block hash over the strategy's hash fields.
	BlockDigest(block database.Block) string

	// SaveState writes the strategy's auxiliary state into the snapshot.
	SaveState(snapshot *database.Snapshot)

	// RestoreState reads the strategy's auxiliary state from the snapshot.
	RestoreState(snapshot database.Snapshot) error
}

// List of registered strategy kinds.
const (
	KindPoW  = "pow"
	KindPoS  = "pos"
	KindPBFT = "pbft"
)

// Stake associates a validator identity with its positive selection weight.
type Stake struct {
	Validator string
	Stake     float64
}

// Config represents the configuration required to construct a strategy
// through the registry.
type Config struct {
	Kind       string
	Difficulty int     // pow
	Stakes     []Stake // pos
	Validators []string
	EvHandler  EvHandler
}

// New constructs the strategy specified by the configuration.
func New(cfg Config) (Strategy, error) {
	switch cfg.Kind {
	case KindPoW:
		return NewProofOfWork(cfg.Difficulty, cfg.EvHandler), nil

	case KindPoS:
		pos := NewProofOfStake(cfg.EvHandler)
		for _, s := range cfg.Stakes {
			if err := pos.AddValidator(s.Validator, s.Stake); err != nil {
				return nil, err
			}
		}
		return pos, nil

	case KindPBFT:
		return NewPBFT(cfg.Validators, cfg.EvHandler)
	}

	return nil, fmt.Errorf("strategy %q does not exist", cfg.Kind)
}

// =============================================================================

// safeEv guards against a nil event handler.
func safeEv(ev EvHandler) EvHandler {
	return func(v string, args ...any) {
		if ev != nil {
			ev(v, args...)
		}
	}
}
