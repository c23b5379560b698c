// Package cryptoadapter is the sole boundary between the consensus code and
// the underlying hash and signature primitives: SHA-256 for content
// addressing and secp256k1 for ownership. Nothing outside this package
// touches crypto/sha256 or the decred secp256k1 bindings directly.
package cryptoadapter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/corvidchain/corvid/model"
)

// SHA256Hex hashes prefix followed by the canonical JSON encoding of
// payload and returns the digest as a 64-character lowercase hex string.
// Every content hash in the system (transaction, coinbase, block, genesis)
// is produced by this one function with a different prefix.
func SHA256Hex(prefix []byte, payload interface{}) (model.Hash, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, len(prefix)+len(data))
	buf = append(buf, prefix...)
	buf = append(buf, data...)
	sum := sha256.Sum256(buf)
	return model.Hash(hex.EncodeToString(sum[:])), nil
}
