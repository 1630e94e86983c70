package mempool_test

import (
	"testing"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/mempool"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Mempool(t *testing.T) {
	t.Log("Given the need to manage pending transactions.")
	{
		mp := mempool.New()

		tx1 := database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r1"})
		tx2 := database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r2"})
		tx3 := database.NewTx(database.Tx{"type": "consent", "status": "granted"})

		mp.Add(tx1)
		mp.Add(tx2)
		mp.Add(tx3)

		t.Logf("\tTest 0:\tWhen taking a snapshot of the pool.")
		{
			snap := mp.Snapshot()
			if len(snap) != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould hold 3 transactions: got %d", failed, len(snap))
			}
			t.Logf("\t%s\tTest 0:\tShould hold 3 transactions.", success)

			if snap[0].ID() != tx1.ID() || snap[1].ID() != tx2.ID() || snap[2].ID() != tx3.ID() {
				t.Fatalf("\t%s\tTest 0:\tShould preserve submission order.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould preserve submission order.", success)

			snap[0]["hash"] = "mutated"
			if mp.Snapshot()[0]["hash"] != "r1" {
				t.Fatalf("\t%s\tTest 0:\tShould not share state with callers.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not share state with callers.", success)
		}

		t.Logf("\tTest 1:\tWhen removing sealed transactions.")
		{
			mp.Remove([]string{tx1.ID(), tx3.ID(), "unknown"})

			snap := mp.Snapshot()
			if len(snap) != 1 || snap[0].ID() != tx2.ID() {
				t.Fatalf("\t%s\tTest 1:\tShould keep only the unsealed transaction.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep only the unsealed transaction.", success)
		}

		t.Logf("\tTest 2:\tWhen truncating the pool.")
		{
			mp.Truncate()
			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould leave an empty pool: got %d", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 2:\tShould leave an empty pool.", success)
		}
	}
}
