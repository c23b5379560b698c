// Package wallet builds and signs spending transactions from a single
// owned keypair.
package wallet

import (
	"errors"

	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/utxoset"
)

// ErrInsufficientFunds is returned by MakeTx when the wallet's UTXOs can
// never cover the requested amount plus fees, however many are spent.
var ErrInsufficientFunds = errors.New("wallet: insufficient funds to cover amount and fees")

// minSendAmount is the floor MakeTx enforces on amountSent.
const minSendAmount = 2

const burnPerTx = 1

// Wallet holds one secp256k1 keypair for its process lifetime.
type Wallet struct {
	keys cryptoadapter.KeyPair
}

// New constructs a wallet around an existing keypair.
func New(keys cryptoadapter.KeyPair) *Wallet {
	return &Wallet{keys: keys}
}

// Generate constructs a wallet around a freshly generated keypair.
func Generate() (*Wallet, error) {
	kp, err := cryptoadapter.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(kp), nil
}

// PublicKey returns the wallet's compressed public key.
func (w *Wallet) PublicKey() model.PublicKey {
	return w.keys.Public
}

// Balance sums every UTXO in utxos owned by this wallet.
func (w *Wallet) Balance(utxos *utxoset.Set) int64 {
	var total int64
	for _, u := range utxos.ForPublicKey(w.keys.Public) {
		total += u.Amount
	}
	return total
}

// MakeTx builds and signs a transaction sending amountSent to recipient,
// spending only UTXOs owned by this wallet, returning any leftover as a
// change output back to the wallet when that leftover exceeds one unit.
func (w *Wallet) MakeTx(amountSent int64, recipient model.PublicKey, utxos *utxoset.Set) (model.Transaction, error) {
	if amountSent <= minSendAmount {
		return model.Transaction{}, errors.New("wallet: amount sent must exceed the minimum output size")
	}

	owned := utxos.ForPublicKey(w.keys.Public)

	var (
		inputs []model.Input
		spent  []model.UTXO
		total  int64
	)
	for _, u := range owned {
		inputs = append(inputs, model.Input{Hash: u.Hash, Index: u.Index})
		spent = append(spent, u)
		total += u.Amount

		if total >= amountSent+burnPerTx+int64(len(inputs)) {
			break
		}
	}
	if total < amountSent+burnPerTx+int64(len(inputs)) {
		return model.Transaction{}, ErrInsufficientFunds
	}

	outputs := []model.Output{
		{PublicKey: recipient, Amount: amountSent},
	}
	change := total - amountSent - burnPerTx - int64(len(inputs))
	if change > 1 {
		outputs = append(outputs, model.Output{PublicKey: w.keys.Public, Amount: change})
	}

	tx := model.Transaction{Inputs: inputs, Outputs: outputs}
	hash, err := cryptoadapter.SHA256Hex(nil, tx.Canonical())
	if err != nil {
		return model.Transaction{}, err
	}
	tx.Hash = hash

	for i := range tx.Inputs {
		sig, err := cryptoadapter.Sign(w.keys.Private, tx.Hash)
		if err != nil {
			return model.Transaction{}, err
		}
		tx.Inputs[i].Signature = sig
	}

	return tx, nil
}
