// Package state is the core API for the ledger and implements all the
// business rules and processing. It owns the ordered chain of blocks and the
// pending transaction pool, orchestrates finalization through the selected
// consensus strategy and keeps the snapshot on disk in sync.
package state

import (
	"errors"
	"sync"

	"github.com/medchain/medchain/foundation/events"
	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/mempool"
)

// EventHandler defines a function that is called when events occur in the
// processing of the ledger.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	Strategy  consensus.Strategy
	Store     database.Store
	EvHandler EventHandler
	Evts      *events.Events
}

// State manages the ledger. All mutation is serialized; at most one
// finalization round is in flight at a time.
type State struct {
	mu        sync.RWMutex
	chain     []database.Block
	mempool   *mempool.Mempool
	strategy  consensus.Strategy
	store     database.Store
	evHandler EventHandler
	evts      *events.Events

	// finalizeMu keeps a single finalization round in flight while mu is
	// released for the duration of the compute bound strategy run.
	finalizeMu sync.Mutex
}

// New constructs the ledger. An existing snapshot is loaded and revalidated;
// if the snapshot is unreadable or fails validation the history is discarded
// and the ledger restarts from a fresh genesis chain, emitting a recovery
// event so the data loss stays observable.
func New(cfg Config) (*State, error) {
	if cfg.Strategy == nil {
		return nil, errors.New("a consensus strategy is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("a snapshot store is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	s := State{
		mempool:   mempool.New(),
		strategy:  cfg.Strategy,
		store:     cfg.Store,
		evHandler: ev,
		evts:      cfg.Evts,
	}

	snapshot, exists, err := cfg.Store.Load()
	switch {
	case err != nil:
		s.recoverChain("snapshot unreadable: " + err.Error())

	case !exists:
		ev("state: new: no existing snapshot, creating genesis chain")
		s.chain = []database.Block{cfg.Strategy.Genesis()}

	default:
		s.restore(snapshot)
	}

	return &s, nil
}

// restore applies a loaded snapshot, falling back to a fresh genesis chain
// when the chain doesn't revalidate.
func (s *State) restore(snapshot database.Snapshot) {
	if err := s.strategy.RestoreState(snapshot); err != nil {
		s.recoverChain("strategy state unreadable: " + err.Error())
		return
	}

	s.mempool.Replace(snapshot.PendingTransactions)

	if len(snapshot.Chain) == 0 {
		s.recoverChain("snapshot carries an empty chain")
		return
	}

	if faults := ValidateChain(snapshot.Chain, s.strategy); len(faults) > 0 {
		s.recoverChain("loaded chain failed validation: " + faults[0].Reason)
		return
	}

	s.chain = snapshot.Chain
	s.evHandler("state: restore: chain loaded with %d blocks, %d pending", len(s.chain), s.mempool.Count())
}

// recoverChain discards any loaded history and restarts from genesis. The store
// is not rewritten until the next successful finalization.
func (s *State) recoverChain(reason string) {
	s.evHandler("state: recover: DATA LOSS: %s: restarting from genesis", reason)

	s.chain = []database.Block{s.strategy.Genesis()}

	if s.evts != nil {
		s.evts.Send(events.Event{
			Kind:   events.KindChainRecovered,
			Detail: reason,
		})
	}
}

// Truncate resets the chain both on disk and in memory back to a genesis
// only chain. Operator recovery support.
func (s *State) Truncate() error {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()
	s.chain = []database.Block{s.strategy.Genesis()}

	return s.store.Reset()
}

// save persists the full ledger state as one snapshot document.
func (s *State) save() error {
	s.mu.RLock()
	snapshot := database.Snapshot{
		Chain:               append([]database.Block(nil), s.chain...),
		PendingTransactions: s.mempool.Snapshot(),
	}
	s.mu.RUnlock()

	s.strategy.SaveState(&snapshot)

	return s.store.Save(snapshot)
}
