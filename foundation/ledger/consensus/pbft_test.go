package consensus_test

import (
	"errors"
	"testing"

	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
)

var quorumValidators = []string{"node-1", "node-2", "node-3", "node-4"}

func Test_PBFTConstruction(t *testing.T) {
	t.Log("Given the need for a fault tolerant validator set.")
	{
		if _, err := consensus.NewPBFT([]string{"node-1", "node-2", "node-3"}, nil); !errors.Is(err, consensus.ErrInsufficientValidators) {
			t.Fatalf("\t%s\tShould reject fewer than 4 validators: got %v", failed, err)
		}
		t.Logf("\t%s\tShould reject fewer than 4 validators.", success)

		pbft, err := consensus.NewPBFT(quorumValidators, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould accept 4 validators: %v", failed, err)
		}
		if got := pbft.Validators(); len(got) != 4 {
			t.Fatalf("\t%s\tShould keep the validator set: got %d", failed, len(got))
		}
		t.Logf("\t%s\tShould accept 4 validators.", success)
	}
}

func Test_PBFTQuorum(t *testing.T) {
	t.Log("Given the need to seal blocks through a quorum vote.")
	{
		t.Logf("\tTest 0:\tWhen every validator is honest.")
		{
			pbft, err := consensus.NewPBFT(quorumValidators, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould construct the strategy: %v", failed, err)
			}

			genesis := pbft.Genesis()
			if genesis.Proposer != "system" {
				t.Fatalf("\t%s\tTest 0:\tShould attribute the genesis block to the system: got %q", failed, genesis.Proposer)
			}
			if err := pbft.VerifyBlock(genesis); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the genesis vote map: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould build a verifiable genesis block.", success)

			pending := []database.Tx{
				database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "abc123"}),
			}

			block, err := pbft.Finalize(pending, genesis, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould seal the block: %v", failed, err)
			}
			if block.Proposer != "node-1" {
				t.Fatalf("\t%s\tTest 0:\tShould propose with the first validator: got %q", failed, block.Proposer)
			}
			if len(block.Votes) != 4 {
				t.Fatalf("\t%s\tTest 0:\tShould record a vote per validator: got %d", failed, len(block.Votes))
			}
			if got := pbft.BlockDigest(block); got != block.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould store a reproducible hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould seal the block with a full vote map.", success)
		}

		t.Logf("\tTest 1:\tWhen one validator dissents.")
		{
			dissent := func(validator string, candidate database.Block, head database.Block, height int) bool {
				return validator != "node-4"
			}

			pbft, err := consensus.NewPBFT(quorumValidators, nil, consensus.WithEvaluator(dissent))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould construct the strategy: %v", failed, err)
			}

			pending := []database.Tx{
				database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "abc123"}),
			}

			block, err := pbft.Finalize(pending, pbft.Genesis(), 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould still reach quorum with 3 of 4 votes: %v", failed, err)
			}
			if block.Votes["node-4"] {
				t.Fatalf("\t%s\tTest 1:\tShould record the dissenting vote.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reach quorum with 3 of 4 votes.", success)
		}

		t.Logf("\tTest 2:\tWhen two validators dissent.")
		{
			dissent := func(validator string, candidate database.Block, head database.Block, height int) bool {
				return validator == "node-1" || validator == "node-2"
			}

			pbft, err := consensus.NewPBFT(quorumValidators, nil, consensus.WithEvaluator(dissent))
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould construct the strategy: %v", failed, err)
			}

			pending := []database.Tx{
				database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "abc123"}),
			}

			if _, err := pbft.Finalize(pending, pbft.Genesis(), 1); !errors.Is(err, consensus.ErrConsensusNotReached) {
				t.Fatalf("\t%s\tTest 2:\tShould fail quorum with 2 of 4 votes: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould fail quorum with 2 of 4 votes.", success)
		}
	}
}

func Test_PBFTProposerRotation(t *testing.T) {
	t.Log("Given the need to rotate the proposer every round.")
	{
		pbft, err := consensus.NewPBFT(quorumValidators, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould construct the strategy: %v", failed, err)
		}

		head := pbft.Genesis()
		want := []string{"node-1", "node-2", "node-3", "node-4", "node-1"}

		for round, proposer := range want {
			pending := []database.Tx{
				database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r"}),
			}

			block, err := pbft.Finalize(pending, head, round+1)
			if err != nil {
				t.Fatalf("\t%s\tShould seal round %d: %v", failed, round, err)
			}
			if block.Proposer != proposer {
				t.Fatalf("\t%s\tShould propose round %d with %q: got %q", failed, round, proposer, block.Proposer)
			}
			head = block
		}
		t.Logf("\t%s\tShould rotate the proposer round robin.", success)
	}
}

func Test_PBFTVerifyBlock(t *testing.T) {
	t.Log("Given the need to re-check the vote map of a stored block.")
	{
		pbft, err := consensus.NewPBFT(quorumValidators, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould construct the strategy: %v", failed, err)
		}

		block := database.NewBlock(1, nil, "prev")

		block.Votes = map[string]bool{"node-1": true, "node-2": true, "node-3": true, "node-4": false}
		if err := pbft.VerifyBlock(block); err != nil {
			t.Fatalf("\t%s\tShould accept 3 of 4 votes: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept 3 of 4 votes.", success)

		block.Votes = map[string]bool{"node-1": true, "node-2": true, "node-3": false, "node-4": false}
		if err := pbft.VerifyBlock(block); err == nil {
			t.Fatalf("\t%s\tShould reject 2 of 4 votes.", failed)
		}
		t.Logf("\t%s\tShould reject 2 of 4 votes.", success)
	}
}

func Test_PBFTState(t *testing.T) {
	t.Log("Given the need to carry the validator set through a snapshot.")
	{
		pbft, err := consensus.NewPBFT(quorumValidators, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould construct the strategy: %v", failed, err)
		}

		// Advance the cursor one position before saving.
		pending := []database.Tx{
			database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r"}),
		}
		if _, err := pbft.Finalize(pending, pbft.Genesis(), 1); err != nil {
			t.Fatalf("\t%s\tShould seal a block: %v", failed, err)
		}

		var snapshot database.Snapshot
		pbft.SaveState(&snapshot)

		if snapshot.CurrentProposerIndex != 1 {
			t.Fatalf("\t%s\tShould record the proposer cursor: got %d", failed, snapshot.CurrentProposerIndex)
		}
		t.Logf("\t%s\tShould record the proposer cursor.", success)

		restored, err := consensus.NewPBFT(quorumValidators, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould construct the strategy: %v", failed, err)
		}
		if err := restored.RestoreState(snapshot); err != nil {
			t.Fatalf("\t%s\tShould restore from the snapshot: %v", failed, err)
		}

		block, err := restored.Finalize(pending, restored.Genesis(), 1)
		if err != nil {
			t.Fatalf("\t%s\tShould seal a block after restore: %v", failed, err)
		}
		if block.Proposer != "node-2" {
			t.Fatalf("\t%s\tShould resume the rotation where it stopped: got %q", failed, block.Proposer)
		}
		t.Logf("\t%s\tShould resume the rotation where it stopped.", success)
	}
}
