package state

import (
	"fmt"

	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
)

// Fault describes why a specific block failed validation. Proof
// verification failures are reported this way, never as a fatal error; the
// caller decides how to react.
type Fault struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Validate recomputes every block's hash, checks the hash linkage to the
// previous block and re-checks the strategy proof, returning a fault for
// every block that fails.
func (s *State) Validate() []Fault {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ValidateChain(s.chain, s.strategy)
}

// IsValid reports whether the whole chain validates.
func (s *State) IsValid() bool {
	return len(s.Validate()) == 0
}

// ValidateChain walks a chain starting after genesis and reports a fault
// for every block that fails. Validate and the snapshot load path both run
// through here.
func ValidateChain(chain []database.Block, strategy consensus.Strategy) []Fault {
	var faults []Fault

	for i := 1; i < len(chain); i++ {
		block := chain[i]

		if block.Index != i {
			faults = append(faults, Fault{
				Index:  i,
				Reason: fmt.Sprintf("block index %d does not match chain position %d", block.Index, i),
			})
		}

		if hash := strategy.BlockDigest(block); block.Hash != hash {
			faults = append(faults, Fault{
				Index:  i,
				Reason: fmt.Sprintf("stored hash %q does not match recomputed hash %q", block.Hash, hash),
			})
		}

		if block.PrevHash != chain[i-1].Hash {
			faults = append(faults, Fault{
				Index:  i,
				Reason: fmt.Sprintf("previous hash %q does not match the hash of block %d", block.PrevHash, i-1),
			})
		}

		if err := strategy.VerifyBlock(block); err != nil {
			faults = append(faults, Fault{
				Index:  i,
				Reason: err.Error(),
			})
		}
	}

	return faults
}
