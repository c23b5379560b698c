package model

// UTXO is an unspent output: a claim of Amount owned by PublicKey, produced
// by the transaction at Hash, at output position Index.
type UTXO struct {
	Hash      Hash      `json:"hash"`
	Index     int       `json:"index"`
	PublicKey PublicKey `json:"publicKey"`
	Amount    int64     `json:"amount"`
}

// UTXOKey uniquely identifies a UTXO within a set, independent of the
// amount and owner it currently carries. Inputs reference UTXOs by key.
type UTXOKey struct {
	Hash  Hash
	Index int
}

// Key returns the identity of u within a UTXO set.
func (u UTXO) Key() UTXOKey {
	return UTXOKey{Hash: u.Hash, Index: u.Index}
}
