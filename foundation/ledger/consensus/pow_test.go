package consensus_test

import (
	"strings"
	"testing"

	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_ProofOfWork(t *testing.T) {
	t.Log("Given the need to seal blocks with a proof of work search.")
	{
		pow := consensus.NewProofOfWork(2, nil)

		t.Logf("\tTest 0:\tWhen constructing the genesis block.")
		{
			genesis := pow.Genesis()

			if genesis.Index != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have index 0: got %d", failed, genesis.Index)
			}
			if genesis.PrevHash != database.GenesisPrevHash {
				t.Fatalf("\t%s\tTest 0:\tShould link to %q: got %q", failed, database.GenesisPrevHash, genesis.PrevHash)
			}
			if !strings.HasPrefix(genesis.Hash, "00") {
				t.Fatalf("\t%s\tTest 0:\tShould mine the genesis block: got hash %q", failed, genesis.Hash)
			}
			t.Logf("\t%s\tTest 0:\tShould mine a genesis block at index 0.", success)

			if err := pow.VerifyBlock(genesis); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the genesis block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the genesis block.", success)
		}

		t.Logf("\tTest 1:\tWhen sealing a batch of pending transactions.")
		{
			genesis := pow.Genesis()
			pending := []database.Tx{
				database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "abc123"}),
			}

			block, err := pow.Finalize(pending, genesis, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould seal the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould seal the block.", success)

			if !strings.HasPrefix(block.Hash, "00") {
				t.Fatalf("\t%s\tTest 1:\tShould satisfy the difficulty prefix: got %q", failed, block.Hash)
			}
			t.Logf("\t%s\tTest 1:\tShould satisfy the difficulty prefix.", success)

			if got := pow.BlockDigest(block); got != block.Hash {
				t.Fatalf("\t%s\tTest 1:\tShould store a reproducible hash: got %q, want %q", failed, block.Hash, got)
			}
			t.Logf("\t%s\tTest 1:\tShould store a reproducible hash.", success)

			if block.PrevHash != genesis.Hash || block.Index != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould extend the head block.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould extend the head block.", success)
		}

		t.Logf("\tTest 2:\tWhen verifying a block below the difficulty target.")
		{
			block := database.NewBlock(1, nil, "prev")
			block.Hash = "ff1234"

			if err := pow.VerifyBlock(block); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject the block.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the block.", success)
		}
	}
}

func Test_ProofOfWorkState(t *testing.T) {
	t.Log("Given the need to carry the difficulty through a snapshot.")
	{
		pow := consensus.NewProofOfWork(3, nil)

		var snapshot database.Snapshot
		pow.SaveState(&snapshot)

		if snapshot.Difficulty != 3 {
			t.Fatalf("\t%s\tShould record the difficulty: got %d", failed, snapshot.Difficulty)
		}
		t.Logf("\t%s\tShould record the difficulty.", success)

		restored := consensus.NewProofOfWork(0, nil)
		if restored.Difficulty() != consensus.DefaultDifficulty {
			t.Fatalf("\t%s\tShould default a non-positive difficulty: got %d", failed, restored.Difficulty())
		}
		t.Logf("\t%s\tShould default a non-positive difficulty.", success)

		if err := restored.RestoreState(snapshot); err != nil {
			t.Fatalf("\t%s\tShould restore from the snapshot: %v", failed, err)
		}
		if restored.Difficulty() != 3 {
			t.Fatalf("\t%s\tShould adopt the snapshot difficulty: got %d", failed, restored.Difficulty())
		}
		t.Logf("\t%s\tShould adopt the snapshot difficulty.", success)
	}
}

func Test_FactoryUnknownKind(t *testing.T) {
	t.Log("Given the need to reject an unknown strategy name.")
	{
		_, err := consensus.New(consensus.Config{Kind: "paxos"})
		if err == nil {
			t.Fatalf("\t%s\tShould reject the strategy name.", failed)
		}
		t.Logf("\t%s\tShould reject the strategy name.", success)
	}
}
