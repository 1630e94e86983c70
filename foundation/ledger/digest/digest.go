// Package digest provides the canonical content hashing used for transaction
// ids and block hashes. The same value must always produce the same digest,
// including after a save/reload cycle, so integrity checks are reproducible
// byte for byte.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value. The value is serialized with
// map keys in sorted order (encoding/json guarantees this) so insertion
// order never affects the digest.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
