package cryptoadapter

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/corvidchain/corvid/model"
)

// Sign produces a DER-encoded secp256k1 signature over the 32-byte digest
// identified by hash, hex-decoded first since every hash in this system is
// already a hex string.
func Sign(priv *secp256k1.PrivateKey, hash model.Hash) (model.Signature, error) {
	digest, err := hex.DecodeString(string(hash))
	if err != nil {
		return "", err
	}
	sig := ecdsa.Sign(priv, digest)
	return model.Signature(hex.EncodeToString(sig.Serialize())), nil
}

// Verify checks that sig is a valid secp256k1 signature by pub over hash.
func Verify(pub *secp256k1.PublicKey, hash model.Hash, sig model.Signature) error {
	if !sig.Valid() {
		return errors.New("cryptoadapter: malformed signature encoding")
	}
	digest, err := hex.DecodeString(string(hash))
	if err != nil {
		return err
	}
	sigBytes, err := hex.DecodeString(string(sig))
	if err != nil {
		return err
	}
	parsed, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return err
	}
	if !parsed.Verify(digest, pub) {
		return errors.New("cryptoadapter: signature does not verify")
	}
	return nil
}
