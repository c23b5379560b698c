// Package miner runs the proof-of-work search: given a snapshot of the
// mempool and the current chain tip, it assembles a candidate block, pays
// its coinbase to a configured public key, and searches for a nonce whose
// resulting hash meets the chain's required difficulty.
package miner

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/eventlog"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/work"
)

// Snapshot is the immutable input to one mining attempt: the tip to
// extend, the difficulty required to extend it, and the pending
// transactions to include. Callers take this snapshot under whatever lock
// guards the live chain and pool, then hand it to Attempt without holding
// that lock for the (potentially long) duration of the search.
type Snapshot struct {
	Tip                model.Block
	RequiredDifficulty int
	PendingTxs         []model.Transaction
}

// nonceCeiling keeps drawn nonces within the safe-integer range every
// amount, index and timestamp in this system is held to.
const nonceCeiling = int64(1) << 53

const coinbaseBaseReward = 10

// Miner searches for valid blocks on behalf of one payout address. It holds
// no state of its own beyond that address; every attempt reads a fresh
// snapshot of the chain and pool it is given.
type Miner struct {
	payout    model.PublicKey
	evHandler eventlog.Handler
}

// New constructs a Miner that pays every coinbase it mines to payout.
func New(payout model.PublicKey, evHandler eventlog.Handler) *Miner {
	if evHandler == nil {
		evHandler = eventlog.Noop
	}
	return &Miner{payout: payout, evHandler: evHandler}
}

// Attempt assembles one candidate block from snap and searches for a
// satisfying nonce until ctx is cancelled or a solution is found. The
// caller is responsible for submitting the returned block through the
// normal AddBlock path; Attempt touches no shared state itself.
func (m *Miner) Attempt(ctx context.Context, snap Snapshot) (model.Block, bool, error) {
	m.evHandler("miner: attempt: started")
	defer m.evHandler("miner: attempt: completed")

	tip := snap.Tip
	txs := snap.PendingTxs

	candidateTime := tip.Time + 1
	if now := time.Now().Unix(); now > candidateTime {
		candidateTime = now
	}

	coinbase, err := m.buildCoinbase(candidateTime, txs)
	if err != nil {
		return model.Block{}, false, err
	}

	required := snap.RequiredDifficulty
	m.evHandler("miner: attempt: required difficulty %d", required)

	for {
		select {
		case <-ctx.Done():
			m.evHandler("miner: attempt: cancelled")
			return model.Block{}, false, nil
		default:
		}

		nonce, err := randomNonce()
		if err != nil {
			return model.Block{}, false, err
		}

		block := model.Block{
			Time:  candidateTime,
			Txs:   append(append([]model.Transaction{}, txs...), coinbase),
			Nonce: nonce,
		}
		hash, err := cryptoadapter.SHA256Hex([]byte(tip.Hash), block.Canonical())
		if err != nil {
			return model.Block{}, false, err
		}
		block.Hash = hash

		if work.BlockDifficulty(hash) >= required {
			m.evHandler("miner: attempt: solved: hash %s nonce %d", hash, nonce)
			return block, true, nil
		}
	}
}

// buildCoinbase constructs the block's mandatory final transaction, paying
// the fixed base reward plus one unit of fee per spending transaction's
// input to the miner's payout address.
func (m *Miner) buildCoinbase(blockTime int64, txs []model.Transaction) (model.Transaction, error) {
	var feeTotal int64
	for _, tx := range txs {
		feeTotal += int64(len(tx.Inputs))
	}

	coinbase := model.Transaction{
		Outputs: []model.Output{
			{PublicKey: m.payout, Amount: coinbaseBaseReward + feeTotal},
		},
	}

	prefix := []byte(strconv.FormatInt(blockTime, 10))
	hash, err := cryptoadapter.SHA256Hex(prefix, coinbase.CanonicalCoinbase())
	if err != nil {
		return model.Transaction{}, err
	}
	coinbase.Hash = hash
	return coinbase, nil
}

// randomNonce draws a cryptographically random nonce in [0, nonceCeiling).
func randomNonce() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	n := int64(binary.BigEndian.Uint64(buf[:]) >> 11)
	return n % nonceCeiling, nil
}
