// Package mempool implements the pool of pending transactions: the set of
// transactions that have been individually validated and don't
// double-spend each other, awaiting inclusion in a mined block.
package mempool

import (
	"errors"

	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/txvalidator"
	"github.com/corvidchain/corvid/utxoset"
)

// ErrPoolConflict is returned by AddTx when tx's inputs collide with an
// input already claimed by another pool member. Unlike a validation
// failure this is not a consensus error — the transaction may become
// acceptable later once the conflicting entry clears — so callers should
// treat it as a silent reject rather than something worth logging loudly.
var ErrPoolConflict = errors.New("mempool: input already claimed by a pending transaction")

// Pool owns its pending-transaction list and a parallel index of the UTXOs
// claimed by them. Pool is not safe for concurrent use; node.Node
// serializes access.
type Pool struct {
	txs       []model.Transaction
	usedUTXOs map[model.UTXOKey]bool
}

// New constructs an empty pool.
func New() *Pool {
	return &Pool{usedUTXOs: make(map[model.UTXOKey]bool)}
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	return len(p.txs)
}

// Txs returns the pending transactions in acceptance order. The returned
// slice is a fresh copy.
func (p *Pool) Txs() []model.Transaction {
	out := make([]model.Transaction, len(p.txs))
	copy(out, p.txs)
	return out
}

// AddTx validates tx against a dry-run copy of utxos inside a synthetic
// empty building block, then checks it against every input already claimed
// by the pool. A structural or consensus failure from the validator is
// returned as-is; a conflict with an existing pool member is reported as
// ErrPoolConflict.
func (p *Pool) AddTx(tx model.Transaction, utxos *utxoset.Set) error {
	dryRun := utxos.Copy()
	synthetic := &model.Block{}
	if err := txvalidator.AddTx(tx, synthetic, dryRun); err != nil {
		return err
	}

	for _, in := range tx.Inputs {
		key := model.UTXOKey{Hash: in.Hash, Index: in.Index}
		if p.usedUTXOs[key] {
			return ErrPoolConflict
		}
	}

	p.txs = append(p.txs, tx)
	for _, in := range tx.Inputs {
		p.usedUTXOs[model.UTXOKey{Hash: in.Hash, Index: in.Index}] = true
	}
	return nil
}

// FindTxIndex returns the index of the pool transaction that consumes utxo
// as an input, or -1 if none does.
func (p *Pool) FindTxIndex(utxo model.UTXOKey) int {
	for i, tx := range p.txs {
		for _, in := range tx.Inputs {
			if in.Hash == utxo.Hash && in.Index == utxo.Index {
				return i
			}
		}
	}
	return -1
}

// RemoveBlockTxs evicts every pool entry that a newly confirmed block's
// non-coinbase transactions have spent an input of. It is idempotent and
// terminates even when several block transactions evict the same pool
// entry, since eviction consults the current, shrinking p.txs on each step
// rather than a snapshot taken up front.
func (p *Pool) RemoveBlockTxs(block model.Block) {
	for _, tx := range block.NonCoinbaseTxs() {
		for _, in := range tx.Inputs {
			key := model.UTXOKey{Hash: in.Hash, Index: in.Index}
			idx := p.FindTxIndex(key)
			if idx == -1 {
				continue
			}
			p.evict(idx)
		}
	}
}

// Clear empties the pool, used when a chain swap invalidates every
// outstanding assumption pool members were validated against.
func (p *Pool) Clear() {
	p.txs = nil
	p.usedUTXOs = make(map[model.UTXOKey]bool)
}

// evict removes the pool entry at idx and releases every UTXO it had
// claimed.
func (p *Pool) evict(idx int) {
	tx := p.txs[idx]
	for _, in := range tx.Inputs {
		delete(p.usedUTXOs, model.UTXOKey{Hash: in.Hash, Index: in.Index})
	}
	p.txs = append(p.txs[:idx], p.txs[idx+1:]...)
}
