package digest_test

import (
	"strings"
	"testing"

	"github.com/medchain/medchain/foundation/ledger/digest"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Hash(t *testing.T) {
	t.Log("Given the need to validate canonical hashing.")
	{
		t.Logf("\tTest 0:\tWhen hashing the same content twice.")
		{
			value := map[string]any{
				"type":   "medical_record_hash",
				"hash":   "abc123",
				"nested": map[string]any{"b": 2.0, "a": 1.0},
			}

			h1 := digest.Hash(value)
			h2 := digest.Hash(value)

			if h1 != h2 {
				t.Fatalf("\t%s\tTest 0:\tShould produce the same digest: got %q and %q", failed, h1, h2)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the same digest.", success)

			if len(h1) != 64 || h1 != strings.ToLower(h1) {
				t.Fatalf("\t%s\tTest 0:\tShould produce 64 lowercase hex digits: %q", failed, h1)
			}
			t.Logf("\t%s\tTest 0:\tShould produce 64 lowercase hex digits.", success)
		}

		t.Logf("\tTest 1:\tWhen hashing different content.")
		{
			h1 := digest.Hash(map[string]any{"type": "consent", "status": "granted"})
			h2 := digest.Hash(map[string]any{"type": "consent", "status": "revoked"})

			if h1 == h2 {
				t.Fatalf("\t%s\tTest 1:\tShould produce different digests.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould produce different digests.", success)
		}
	}
}
