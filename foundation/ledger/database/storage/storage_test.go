package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/database/storage"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Disk(t *testing.T) {
	t.Log("Given the need to persist snapshots on disk.")
	{
		path := filepath.Join(t.TempDir(), "ledger", "snapshot.json")

		disk, err := storage.NewDisk(path)
		if err != nil {
			t.Fatalf("\t%s\tShould construct the disk store: %v", failed, err)
		}
		t.Logf("\t%s\tShould construct the disk store.", success)

		t.Logf("\tTest 0:\tWhen loading before any snapshot was saved.")
		{
			_, exists, err := disk.Load()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould not report an error: %v", failed, err)
			}
			if exists {
				t.Fatalf("\t%s\tTest 0:\tShould report the snapshot as absent.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the snapshot as absent.", success)
		}

		t.Logf("\tTest 1:\tWhen saving and reloading a snapshot.")
		{
			tx := database.NewTx(database.Tx{"type": "medical_record_hash", "hash": "r1"})
			block := database.NewBlock(0, []database.Tx{tx}, database.GenesisPrevHash)
			block.Hash = "00abc"

			snapshot := database.Snapshot{
				Chain:               []database.Block{block},
				PendingTransactions: []database.Tx{},
				Difficulty:          3,
			}

			if err := disk.Save(snapshot); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould save the snapshot: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould save the snapshot.", success)

			loaded, exists, err := disk.Load()
			if err != nil || !exists {
				t.Fatalf("\t%s\tTest 1:\tShould load the snapshot back: exists %v, err %v", failed, exists, err)
			}
			if len(loaded.Chain) != 1 || loaded.Chain[0].Hash != "00abc" || loaded.Difficulty != 3 {
				t.Fatalf("\t%s\tTest 1:\tShould round trip the snapshot contents.", failed)
			}
			if _, found := loaded.Chain[0].FindTx(tx.ID()); !found {
				t.Fatalf("\t%s\tTest 1:\tShould round trip the sealed transactions.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould round trip the snapshot contents.", success)
		}

		t.Logf("\tTest 2:\tWhen resetting the store.")
		{
			if err := disk.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould reset without error: %v", failed, err)
			}
			_, exists, err := disk.Load()
			if err != nil || exists {
				t.Fatalf("\t%s\tTest 2:\tShould report the snapshot as absent after reset.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould report the snapshot as absent after reset.", success)
		}
	}
}

func Test_MemoryCorruption(t *testing.T) {
	t.Log("Given the need to detect an unreadable snapshot.")
	{
		mem := storage.NewMemory()
		mem.Corrupt()

		_, exists, err := mem.Load()
		if !exists {
			t.Fatalf("\t%s\tShould report the snapshot as present.", failed)
		}
		if err == nil {
			t.Fatalf("\t%s\tShould report a decode error.", failed)
		}
		t.Logf("\t%s\tShould report the snapshot as present but unreadable.", success)
	}
}
