package utxoset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/model"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	u := model.UTXO{Hash: "aa", Index: 0, PublicKey: "pk", Amount: 5}
	s.Put(u)

	got, ok := s.Get(u.Key())
	require.True(t, ok)
	assert.Equal(t, u, got)

	s.Delete(u.Key())
	_, ok = s.Get(u.Key())
	assert.False(t, ok)
}

func TestForPublicKeyFiltersOwner(t *testing.T) {
	s := New()
	s.Put(model.UTXO{Hash: "aa", Index: 0, PublicKey: "alice", Amount: 5})
	s.Put(model.UTXO{Hash: "bb", Index: 0, PublicKey: "bob", Amount: 7})
	s.Put(model.UTXO{Hash: "cc", Index: 1, PublicKey: "alice", Amount: 3})

	owned := s.ForPublicKey("alice")
	assert.Len(t, owned, 2)
	for _, u := range owned {
		assert.Equal(t, model.PublicKey("alice"), u.PublicKey)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	s := New()
	s.Put(model.UTXO{Hash: "aa", Index: 0, PublicKey: "alice", Amount: 5})

	cpy := s.Copy()
	cpy.Delete(model.UTXOKey{Hash: "aa", Index: 0})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, cpy.Len())
}
