// Package utxoset maintains the cache of unspent transaction outputs: the
// collection keyed by (hash, index) that exists iff the referenced output
// has been confirmed and not yet spent.
package utxoset

import (
	"github.com/corvidchain/corvid/model"
)

// Set is a plain, lock-free collection of UTXOs. Callers that need
// concurrency safety (node.Node) serialize access themselves; Set is
// plainly-owned state meant for a single-threaded event loop.
type Set struct {
	Entries map[model.UTXOKey]model.UTXO
}

// New constructs an empty UTXO set.
func New() *Set {
	return &Set{Entries: make(map[model.UTXOKey]model.UTXO)}
}

// Get returns the UTXO at key, if any.
func (s *Set) Get(key model.UTXOKey) (model.UTXO, bool) {
	u, ok := s.Entries[key]
	return u, ok
}

// Put inserts or replaces the UTXO at its own key.
func (s *Set) Put(u model.UTXO) {
	s.Entries[u.Key()] = u
}

// Delete removes the UTXO at key, if present.
func (s *Set) Delete(key model.UTXOKey) {
	delete(s.Entries, key)
}

// Len returns the number of unspent outputs currently tracked.
func (s *Set) Len() int {
	return len(s.Entries)
}

// All returns every UTXO currently tracked. The returned slice is a fresh
// copy; mutating it does not affect the set.
func (s *Set) All() []model.UTXO {
	out := make([]model.UTXO, 0, len(s.Entries))
	for _, u := range s.Entries {
		out = append(out, u)
	}
	return out
}

// ForPublicKey returns every UTXO owned by pk, in map iteration order. The
// wallet relies on this ordering being stable only within a single call,
// not across calls.
func (s *Set) ForPublicKey(pk model.PublicKey) []model.UTXO {
	var out []model.UTXO
	for _, u := range s.Entries {
		if u.PublicKey == pk {
			out = append(out, u)
		}
	}
	return out
}

// Copy returns an independent deep copy of s. AddTx mutates its UTXO
// argument in place, so every dry run (mempool acceptance, block
// validation, a from-genesis chain rebuild) must
// operate on a copy, never the canonical set itself. model.UTXO is a flat
// value type, so copying the map contents entry by entry is sufficient;
// nothing here aliases the original set's storage.
func (s *Set) Copy() *Set {
	cpy := New()
	for k, v := range s.Entries {
		cpy.Entries[k] = v
	}
	return cpy
}
