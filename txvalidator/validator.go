// Package txvalidator implements the transaction admission rules shared by
// mempool acceptance and block validation: a transaction is checked against
// a UTXO set and, on success, committed into both a building block and that
// same set.
package txvalidator

import (
	"strconv"

	"github.com/corvidchain/corvid/chainerr"
	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/utxoset"
)

// burnPerTx implements the economic invariant that
// sum(inputs) - sum(outputs) == len(inputs) + 1, i.e. one unit of fee per
// input plus one unit burned per transaction.
const burnPerTx = 1

// dustFloor is the minimum amount an output may carry.
const dustFloor = 2

// coinbaseBaseReward is the fixed block subsidy before fees.
const coinbaseBaseReward = 10

// AddTx validates tx against utxos and, on success, appends it to
// block.Txs and mutates utxos in place: consumed entries are removed, one
// new entry per output is added. On any failure neither block nor utxos is
// modified.
func AddTx(tx model.Transaction, block *model.Block, utxos *utxoset.Set) error {
	if err := checkStructure(tx); err != nil {
		return err
	}

	seen := make(map[model.UTXOKey]bool, len(tx.Inputs))
	var net int64
	spent := make([]model.UTXOKey, 0, len(tx.Inputs))

	for _, in := range tx.Inputs {
		key := model.UTXOKey{Hash: in.Hash, Index: in.Index}
		if seen[key] {
			return chainerr.Consistencyf("double-spend", "input %v claimed twice within one transaction", key)
		}
		seen[key] = true

		u, ok := utxos.Get(key)
		if !ok {
			return chainerr.Consistencyf("missing-utxo", "no unspent output at %v", key)
		}
		net += u.Amount
		spent = append(spent, key)
	}

	for _, out := range tx.Outputs {
		if _, err := cryptoadapter.ParsePublicKey(out.PublicKey); err != nil {
			return chainerr.Consistency("invalid-output-key", err)
		}
		if out.Amount < dustFloor {
			return chainerr.Consistencyf("dust-output", "output amount %d below minimum %d", out.Amount, dustFloor)
		}
		net -= out.Amount
	}

	wantNet := int64(len(tx.Inputs)) + burnPerTx
	if net != wantNet {
		return chainerr.Consistencyf("bad-net-amount", "net %d, want %d (fee+burn)", net, wantNet)
	}

	wantHash, err := cryptoadapter.SHA256Hex(nil, tx.Canonical())
	if err != nil {
		return err
	}
	if wantHash != tx.Hash {
		return chainerr.Consistencyf("hash-mismatch", "computed %s, tx claims %s", wantHash, tx.Hash)
	}

	for i, in := range tx.Inputs {
		key := spent[i]
		u, _ := utxos.Get(key)
		pub, err := cryptoadapter.ParsePublicKey(u.PublicKey)
		if err != nil {
			return chainerr.Consistency("invalid-utxo-owner-key", err)
		}
		if err := cryptoadapter.Verify(pub, tx.Hash, in.Signature); err != nil {
			return chainerr.Consistency("bad-signature", err)
		}
	}

	// Commit: nothing above mutated shared state, so we can now do so
	// unconditionally.
	for _, key := range spent {
		utxos.Delete(key)
	}
	for i, out := range tx.Outputs {
		utxos.Put(model.UTXO{Hash: tx.Hash, Index: i, PublicKey: out.PublicKey, Amount: out.Amount})
	}
	block.Txs = append(block.Txs, tx)

	return nil
}

// checkStructure enforces tx's shape rules before any consensus-level
// check runs.
func checkStructure(tx model.Transaction) error {
	if len(tx.Inputs) < 1 {
		return chainerr.Structuralf("inputs", "transaction must have at least one input")
	}
	if len(tx.Outputs) < 1 || len(tx.Outputs) > 2 {
		return chainerr.Structuralf("outputs", "transaction must have one or two outputs, got %d", len(tx.Outputs))
	}
	for _, in := range tx.Inputs {
		if !in.Hash.Valid() {
			return chainerr.Structuralf("inputs.hash", "malformed input hash %q", in.Hash)
		}
		if in.Index != 0 && in.Index != 1 {
			return chainerr.Structuralf("inputs.index", "input index must be 0 or 1, got %d", in.Index)
		}
		if !in.Signature.Valid() {
			return chainerr.Structuralf("inputs.signature", "malformed signature encoding")
		}
	}
	for _, out := range tx.Outputs {
		if !out.PublicKey.Valid() {
			return chainerr.Structuralf("outputs.publicKey", "malformed public key encoding")
		}
	}
	return nil
}

// AddCoinbase must be called exactly once per block, after every
// non-coinbase transaction has already been appended via AddTx. It checks
// the reward matches 10 plus the sum of input counts of the transactions
// already in the block, then appends the coinbase and credits its output.
func AddCoinbase(coinbase model.Transaction, block *model.Block, utxos *utxoset.Set) error {
	if !coinbase.IsCoinbase() {
		return chainerr.Structuralf("coinbase.inputs", "coinbase must have no inputs")
	}
	if len(coinbase.Outputs) != 1 {
		return chainerr.Structuralf("coinbase.outputs", "coinbase must have exactly one output, got %d", len(coinbase.Outputs))
	}

	out := coinbase.Outputs[0]
	if _, err := cryptoadapter.ParsePublicKey(out.PublicKey); err != nil {
		return chainerr.Consistency("invalid-output-key", err)
	}

	wantReward := coinbaseBaseReward + inputFeeTotal(block.Txs)
	if out.Amount != wantReward {
		return chainerr.Consistencyf("bad-coinbase-reward", "coinbase amount %d, want %d", out.Amount, wantReward)
	}

	prefix := []byte(strconv.FormatInt(block.Time, 10))
	wantHash, err := cryptoadapter.SHA256Hex(prefix, coinbase.CanonicalCoinbase())
	if err != nil {
		return err
	}
	if wantHash != coinbase.Hash {
		return chainerr.Consistencyf("hash-mismatch", "computed %s, coinbase claims %s", wantHash, coinbase.Hash)
	}

	block.Txs = append(block.Txs, coinbase)
	utxos.Put(model.UTXO{Hash: coinbase.Hash, Index: 0, PublicKey: out.PublicKey, Amount: out.Amount})

	return nil
}

// inputFeeTotal sums the per-input fee collected across every transaction
// already committed to the block (reward == 10 + sum of each tx's input count).
func inputFeeTotal(txs []model.Transaction) int64 {
	var total int64
	for _, tx := range txs {
		total += int64(len(tx.Inputs))
	}
	return total
}
