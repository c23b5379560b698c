package miner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/work"
)

func TestAttemptSolvesAtZeroDifficulty(t *testing.T) {
	kp, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	m := New(kp.Public, nil)

	snap := Snapshot{
		Tip:                model.Block{Time: 0, Hash: "aa"},
		RequiredDifficulty: 0,
	}

	block, found, err := m.Attempt(context.Background(), snap)
	require.NoError(t, err)
	require.True(t, found)

	assert.True(t, block.Time > snap.Tip.Time)
	assert.Len(t, block.Txs, 1)
	assert.Equal(t, kp.Public, block.Coinbase().Outputs[0].PublicKey)
	assert.Equal(t, int64(coinbaseBaseReward), block.Coinbase().Outputs[0].Amount)
	assert.GreaterOrEqual(t, work.BlockDifficulty(block.Hash), 0)
}

func TestAttemptIncludesPendingTxFeesInCoinbase(t *testing.T) {
	kp, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	m := New(kp.Public, nil)

	pending := []model.Transaction{
		{Inputs: []model.Input{{Hash: "aa", Index: 0}, {Hash: "bb", Index: 0}}},
	}
	snap := Snapshot{
		Tip:                model.Block{Time: 0, Hash: "aa"},
		RequiredDifficulty: 0,
		PendingTxs:         pending,
	}

	block, found, err := m.Attempt(context.Background(), snap)
	require.NoError(t, err)
	require.True(t, found)

	assert.Len(t, block.Txs, 2)
	assert.Equal(t, int64(coinbaseBaseReward+2), block.Coinbase().Outputs[0].Amount)
}

func TestAttemptReturnsOnCancellation(t *testing.T) {
	kp, err := cryptoadapter.GenerateKeyPair()
	require.NoError(t, err)
	m := New(kp.Public, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := Snapshot{
		Tip:                model.Block{Time: 0, Hash: "aa"},
		RequiredDifficulty: 256,
	}

	done := make(chan struct{})
	var found bool
	go func() {
		_, found, err = m.Attempt(ctx, snap)
		close(done)
	}()

	select {
	case <-done:
		assert.NoError(t, err)
		assert.False(t, found)
	case <-time.After(2 * time.Second):
		t.Fatal("Attempt did not respect cancellation")
	}
}
