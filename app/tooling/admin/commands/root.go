// Package commands contains the admin CLI commands for offline snapshot
// inspection.
package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database/storage"
	"github.com/medchain/medchain/foundation/ledger/state"
)

var (
	snapshotPath string
	strategyKind string
	difficulty   int
	validators   []string
	stakePairs   []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&snapshotPath, "snapshot", "s", "zledger/snapshot.json", "Path to the snapshot file.")
	rootCmd.PersistentFlags().StringVarP(&strategyKind, "strategy", "c", "pow", "Consensus strategy the snapshot was written with: pow, pos or pbft.")
	rootCmd.PersistentFlags().IntVarP(&difficulty, "difficulty", "d", 2, "Leading zero hex digits for the pow strategy.")
	rootCmd.PersistentFlags().StringSliceVar(&validators, "validators", nil, "Validator ids for the pbft strategy.")
	rootCmd.PersistentFlags().StringSliceVar(&stakePairs, "stakes", nil, "id:stake pairs for the pos strategy.")
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Anchoring ledger snapshot administration",
}

// Execute runs the admin CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLedger loads the snapshot through the same code path the node uses,
// including revalidation on load.
func openLedger() (*state.State, error) {
	var stakes []consensus.Stake
	for _, pair := range stakePairs {
		id, value, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("stake %q is not an id:stake pair", pair)
		}
		stake, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("stake %q: %w", pair, err)
		}
		stakes = append(stakes, consensus.Stake{Validator: id, Stake: stake})
	}

	strategy, err := consensus.New(consensus.Config{
		Kind:       strategyKind,
		Difficulty: difficulty,
		Stakes:     stakes,
		Validators: validators,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing consensus strategy: %w", err)
	}

	store, err := storage.NewDisk(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("constructing snapshot store: %w", err)
	}

	return state.New(state.Config{
		Strategy: strategy,
		Store:    store,
	})
}
