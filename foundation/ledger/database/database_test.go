package database_test

import (
	"testing"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/digest"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_NewTx(t *testing.T) {
	t.Log("Given the need to validate transaction admission.")
	{
		t.Logf("\tTest 0:\tWhen admitting a payload without a timestamp.")
		{
			tx := database.NewTx(database.Tx{
				"type": "medical_record_hash",
				"hash": "abc123",
			})

			if tx.Timestamp() == "" {
				t.Fatalf("\t%s\tTest 0:\tShould assign a timestamp.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould assign a timestamp.", success)

			if tx.ID() == "" {
				t.Fatalf("\t%s\tTest 0:\tShould assign a tx id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould assign a tx id.", success)

			// The id must be the canonical hash of the transaction minus
			// the tx_id field itself.
			clone := tx.Clone()
			delete(clone, database.FieldTxID)
			if want := digest.Hash(clone); tx.ID() != want {
				t.Fatalf("\t%s\tTest 0:\tShould derive the id from the content: got %q, want %q", failed, tx.ID(), want)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the id from the content.", success)
		}

		t.Logf("\tTest 1:\tWhen admitting a payload that carries a timestamp.")
		{
			tx := database.NewTx(database.Tx{
				"type":      "consent",
				"timestamp": "2026-01-02T15:04:05Z",
			})

			if tx.Timestamp() != "2026-01-02T15:04:05Z" {
				t.Fatalf("\t%s\tTest 1:\tShould keep the caller's timestamp: got %q", failed, tx.Timestamp())
			}
			t.Logf("\t%s\tTest 1:\tShould keep the caller's timestamp.", success)
		}

		t.Logf("\tTest 2:\tWhen mutating the caller's payload after admission.")
		{
			payload := database.Tx{
				"type": "tampering_detection",
				"meta": map[string]any{"severity": "high"},
			}
			tx := database.NewTx(payload)

			payload["type"] = "changed"
			payload["meta"].(map[string]any)["severity"] = "low"

			if tx.Type() != "tampering_detection" {
				t.Fatalf("\t%s\tTest 2:\tShould not share state with the payload.", failed)
			}
			if tx["meta"].(map[string]any)["severity"] != "high" {
				t.Fatalf("\t%s\tTest 2:\tShould deep copy nested values.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not share state with the payload.", success)
		}
	}
}

func Test_BlockFindTx(t *testing.T) {
	t.Log("Given the need to locate sealed transactions inside a block.")
	{
		tx1 := database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r1"})
		tx2 := database.NewTx(database.Tx{"type": "consent", "status": "granted"})

		block := database.NewBlock(1, []database.Tx{tx1, tx2}, "prev")

		if _, found := block.FindTx(tx2.ID()); !found {
			t.Fatalf("\t%s\tShould find a sealed transaction by id.", failed)
		}
		t.Logf("\t%s\tShould find a sealed transaction by id.", success)

		if _, found := block.FindTx("missing"); found {
			t.Fatalf("\t%s\tShould not find an unknown id.", failed)
		}
		t.Logf("\t%s\tShould not find an unknown id.", success)
	}
}
