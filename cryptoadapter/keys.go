package cryptoadapter

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/corvidchain/corvid/model"
)

// KeyPair holds a secp256k1 private key together with its compressed
// public key encoding, the way a Wallet holds exactly one for its process
// lifetime.
type KeyPair struct {
	Private *secp256k1.PrivateKey
	Public  model.PublicKey
}

// GenerateKeyPair produces a fresh random secp256k1 key pair.
func GenerateKeyPair() (KeyPair, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return KeyPair{}, err
	}
	return KeyPairFromSeed(seed[:])
}

// KeyPairFromSeed derives a deterministic key pair from an arbitrary seed
// by hashing it with SHA-256 and using the digest as the private scalar.
// Used both to derive the genesis identity from a fixed literal and by
// tests that need reproducible keys.
func KeyPairFromSeed(seed []byte) (KeyPair, error) {
	digest := sha256.Sum256(seed)
	priv := secp256k1.PrivKeyFromBytes(digest[:])
	return KeyPair{
		Private: priv,
		Public:  EncodePublicKey(priv.PubKey()),
	}, nil
}

// EncodePublicKey renders a secp256k1 public key as the 66-hex-character
// compressed encoding used everywhere in the wire format.
func EncodePublicKey(pub *secp256k1.PublicKey) model.PublicKey {
	return model.PublicKey(hex.EncodeToString(pub.SerializeCompressed()))
}

// ParsePublicKey decodes and validates a compressed secp256k1 point,
// rejecting anything that is not a canonical on-curve encoding.
func ParsePublicKey(pk model.PublicKey) (*secp256k1.PublicKey, error) {
	if !pk.Valid() {
		return nil, errors.New("cryptoadapter: malformed public key encoding")
	}
	raw, err := hex.DecodeString(string(pk))
	if err != nil {
		return nil, err
	}
	return secp256k1.ParsePubKey(raw)
}
