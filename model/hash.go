// Package model defines the wire and consensus types shared by every
// component of the node: hashes, keys, signatures, transactions and blocks.
package model

import "regexp"

// Hash is a 256-bit digest, always carried as 64 lowercase hex characters.
type Hash string

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Valid reports whether h has the shape of a SHA-256 digest.
func (h Hash) Valid() bool {
	return hashPattern.MatchString(string(h))
}

// ZeroHash is the sentinel used before a real hash has been computed.
const ZeroHash Hash = ""

// PublicKey is the 33-byte compressed secp256k1 point, as 66 hex characters.
type PublicKey string

var publicKeyPattern = regexp.MustCompile(`^(02|03)[0-9a-f]{64}$`)

// Valid reports whether pk has the shape of a compressed secp256k1 point.
// It does not verify the point lies on the curve; callers that need that
// guarantee should decode it with cryptoadapter.ParsePublicKey.
func (pk PublicKey) Valid() bool {
	return publicKeyPattern.MatchString(string(pk))
}

// Signature is a DER-encoded secp256k1 signature, as hex.
type Signature string

var signaturePattern = regexp.MustCompile(`^[0-9a-f]{20,144}$`)

// Valid reports whether s has the length and alphabet of a DER signature.
func (s Signature) Valid() bool {
	return signaturePattern.MatchString(string(s))
}
