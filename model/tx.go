package model

// Output is a single spendable slot created by a transaction: an amount
// owed to whoever can sign for publicKey. Amounts below 2 are dust and are
// rejected by the validator, never constructed by honest code.
type Output struct {
	PublicKey PublicKey `json:"publicKey"`
	Amount    int64     `json:"amount"`
}

// Input references a prior Output by the hash of the transaction that
// created it and the index of that output within that transaction's
// outputs. Signature proves the spender owns the referenced output.
type Input struct {
	Hash      Hash      `json:"hash"`
	Index     int       `json:"index"`
	Signature Signature `json:"signature"`
}

// unsignedInput is the canonical (signature-free) form of an Input, used
// both for the message an input's signature is computed over and for the
// transaction hash itself: signatures are never part of a transaction's own
// hash preimage.
type unsignedInput struct {
	Hash  Hash `json:"hash"`
	Index int  `json:"index"`
}

func stripSignature(in Input) unsignedInput {
	return unsignedInput{Hash: in.Hash, Index: in.Index}
}

// Transaction is a spend of one or more UTXOs into one or two new outputs.
// A Transaction with zero Inputs represents a coinbase; AddCoinbase is the
// only validation path that accepts one.
type Transaction struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
	Hash    Hash     `json:"hash"`
}

// canonicalTx is the exact byte shape used for hashing a transaction:
// {inputs, outputs} with inputs stripped of their signatures. Go's
// encoding/json marshals struct fields in declaration order, which is what
// pins this form bit-for-bit across implementations that agree on it.
type canonicalTx struct {
	Inputs  []unsignedInput `json:"inputs"`
	Outputs []Output        `json:"outputs"`
}

// Canonical returns the exact payload whose SHA-256 digest is this
// transaction's hash (before the hash field itself is known).
func (t Transaction) Canonical() canonicalTx {
	ins := make([]unsignedInput, len(t.Inputs))
	for i, in := range t.Inputs {
		ins[i] = stripSignature(in)
	}
	outs := make([]Output, len(t.Outputs))
	copy(outs, t.Outputs)
	return canonicalTx{Inputs: ins, Outputs: outs}
}

// IsCoinbase reports whether t has the shape of a coinbase transaction
// (no inputs). Structural validation of the single-output invariant is the
// caller's job (txvalidator.AddCoinbase).
func (t Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 0
}

// canonicalCoinbase is the {outputs} form used for coinbase hashing.
type canonicalCoinbase struct {
	Outputs []Output `json:"outputs"`
}

// CanonicalCoinbase returns the payload a coinbase transaction's hash is
// computed over, once the block time (or, for genesis, the literal "0")
// prefix is prepended.
func (t Transaction) CanonicalCoinbase() canonicalCoinbase {
	outs := make([]Output, len(t.Outputs))
	copy(outs, t.Outputs)
	return canonicalCoinbase{Outputs: outs}
}
