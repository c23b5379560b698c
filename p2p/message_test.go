package p2p

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/model"
)

func decodeEnvelope(t *testing.T, raw []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestLatestBlockRoundTrips(t *testing.T) {
	block := model.Block{Time: 10, Nonce: 42, Hash: "aa"}

	raw, err := EncodeLatestBlock(block)
	require.NoError(t, err)

	msg := decodeEnvelope(t, raw)
	assert.Equal(t, TypeLatestBlock, msg.Type)

	got, err := DecodeLatestBlock(msg)
	require.NoError(t, err)
	assert.Equal(t, block, got)
}

func TestBlockchainRoundTrips(t *testing.T) {
	blocks := []model.Block{{Time: 0, Hash: "aa"}, {Time: 1, Hash: "bb"}}

	raw, err := EncodeBlockchain(blocks)
	require.NoError(t, err)

	msg := decodeEnvelope(t, raw)
	assert.Equal(t, TypeBlockchain, msg.Type)

	got, err := DecodeBlockchain(msg)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)
}

func TestTransactionRoundTrips(t *testing.T) {
	tx := model.Transaction{
		Inputs:  []model.Input{{Hash: "aa", Index: 0}},
		Outputs: []model.Output{{PublicKey: "pk", Amount: 5}},
		Hash:    "cc",
	}

	raw, err := EncodeTransaction(tx)
	require.NoError(t, err)

	msg := decodeEnvelope(t, raw)
	assert.Equal(t, TypeTransaction, msg.Type)

	got, err := DecodeTransaction(msg)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestDecodeLatestBlockYieldsZeroBlockForWrongPayload(t *testing.T) {
	raw, err := EncodeTransaction(model.Transaction{})
	require.NoError(t, err)
	msg := decodeEnvelope(t, raw)

	// Wrong shape decodes into a zero-value block rather than erroring,
	// since transactionPayload and latestBlockPayload are both single-field
	// JSON objects with unrelated keys.
	got, err := DecodeLatestBlock(msg)
	require.NoError(t, err)
	assert.Equal(t, model.Block{}, got)
}
