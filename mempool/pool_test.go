package mempool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/utxoset"
)

func testHash(prefix string) model.Hash {
	return model.Hash(prefix + strings.Repeat("0", 64-len(prefix)))
}

func fundedSet(t *testing.T, owner model.PublicKey, amount int64, hashPrefix string) (*utxoset.Set, model.UTXOKey) {
	t.Helper()
	s := utxoset.New()
	u := model.UTXO{Hash: testHash(hashPrefix), Index: 0, PublicKey: owner, Amount: amount}
	s.Put(u)
	return s, u.Key()
}

func signedSpend(t *testing.T, kp cryptoadapter.KeyPair, input model.UTXOKey, outputs []model.Output) model.Transaction {
	t.Helper()
	tx := model.Transaction{
		Inputs:  []model.Input{{Hash: input.Hash, Index: input.Index}},
		Outputs: outputs,
	}
	hash, err := cryptoadapter.SHA256Hex(nil, tx.Canonical())
	require.NoError(t, err)
	tx.Hash = hash
	sig, err := cryptoadapter.Sign(kp.Private, hash)
	require.NoError(t, err)
	tx.Inputs[0].Signature = sig
	return tx
}

func TestAddTxAcceptsValidTransaction(t *testing.T) {
	owner, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	recipient, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)

	utxos, key := fundedSet(t, owner.Public, 10, "aa")
	tx := signedSpend(t, owner, key, []model.Output{{PublicKey: recipient.Public, Amount: 8}})

	p := New()
	require.NoError(t, p.AddTx(tx, utxos))
	assert.Equal(t, 1, p.Len())
}

func TestAddTxRejectsConflictingSpend(t *testing.T) {
	owner, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	recipient, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)

	utxos, key := fundedSet(t, owner.Public, 10, "aa")
	tx1 := signedSpend(t, owner, key, []model.Output{{PublicKey: recipient.Public, Amount: 8}})
	tx2 := signedSpend(t, owner, key, []model.Output{{PublicKey: owner.Public, Amount: 8}})

	p := New()
	require.NoError(t, p.AddTx(tx1, utxos))
	err = p.AddTx(tx2, utxos)
	assert.ErrorIs(t, err, ErrPoolConflict)
	assert.Equal(t, 1, p.Len())
}

func TestRemoveBlockTxsEvictsConfirmedSpends(t *testing.T) {
	owner, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	recipient, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)

	utxos, key := fundedSet(t, owner.Public, 10, "aa")
	tx := signedSpend(t, owner, key, []model.Output{{PublicKey: recipient.Public, Amount: 8}})

	p := New()
	require.NoError(t, p.AddTx(tx, utxos))

	block := model.Block{Txs: []model.Transaction{tx, {}}}
	p.RemoveBlockTxs(block)

	assert.Equal(t, 0, p.Len())
	assert.Equal(t, -1, p.FindTxIndex(key))
}

func TestClearEmptiesPoolAndClaims(t *testing.T) {
	owner, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	recipient, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)

	utxos, key := fundedSet(t, owner.Public, 10, "aa")
	tx := signedSpend(t, owner, key, []model.Output{{PublicKey: recipient.Public, Amount: 8}})

	p := New()
	require.NoError(t, p.AddTx(tx, utxos))
	p.Clear()

	assert.Equal(t, 0, p.Len())
	// Now that the claim is released, an identical spend should be
	// acceptable again.
	tx2 := signedSpend(t, owner, key, []model.Output{{PublicKey: recipient.Public, Amount: 8}})
	assert.NoError(t, p.AddTx(tx2, utxos))
}
