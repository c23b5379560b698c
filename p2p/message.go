package p2p

import (
	"encoding/json"

	"github.com/corvidchain/corvid/model"
)

// Type identifies the payload carried by a Message.
type Type string

const (
	// TypeLatestBlock announces a peer's current chain tip. Sent after
	// every block this node mines or accepts from a peer, and after a
	// chain swap; opening a connection does not send one.
	TypeLatestBlock Type = "LATESTBLOCK"

	// TypeBlockchain carries a full chain, sent in response to a
	// LATESTBLOCK that does not extend the receiver's tip, or to a
	// BLOCKCHAIN carrying less work than the receiver's chain.
	TypeBlockchain Type = "BLOCKCHAIN"

	// TypeTransaction relays a single transaction into the receiver's
	// mempool.
	TypeTransaction Type = "TRANSACTION"

	// TypeHello carries the sender's self-identifying peer ID, exchanged
	// once immediately after a connection is established.
	TypeHello Type = "HELLO"
)

// Message is the envelope every value exchanged between peers travels in.
// Payload is re-decoded by the handler for the given Type; Message itself
// never inspects it.
type Message struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps typ and v into a Message and marshals it to bytes ready to
// hand to a websocket connection.
func Encode(typ Type, v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: payload})
}

// helloPayload carries a peer's self-assigned identifier.
type helloPayload struct {
	PeerID string `json:"peerId"`
}

// latestBlockPayload carries the sender's chain tip.
type latestBlockPayload struct {
	Block model.Block `json:"block"`
}

// blockchainPayload carries a sender's full chain, genesis first.
type blockchainPayload struct {
	Blocks []model.Block `json:"blocks"`
}

// transactionPayload carries a single relayed transaction.
type transactionPayload struct {
	Tx model.Transaction `json:"tx"`
}

// EncodeLatestBlock wraps block as a LATESTBLOCK message.
func EncodeLatestBlock(block model.Block) ([]byte, error) {
	return Encode(TypeLatestBlock, latestBlockPayload{Block: block})
}

// DecodeLatestBlock unwraps a LATESTBLOCK message's payload.
func DecodeLatestBlock(msg Message) (model.Block, error) {
	var p latestBlockPayload
	err := json.Unmarshal(msg.Payload, &p)
	return p.Block, err
}

// EncodeBlockchain wraps blocks as a BLOCKCHAIN message.
func EncodeBlockchain(blocks []model.Block) ([]byte, error) {
	return Encode(TypeBlockchain, blockchainPayload{Blocks: blocks})
}

// DecodeBlockchain unwraps a BLOCKCHAIN message's payload.
func DecodeBlockchain(msg Message) ([]model.Block, error) {
	var p blockchainPayload
	err := json.Unmarshal(msg.Payload, &p)
	return p.Blocks, err
}

// EncodeTransaction wraps tx as a TRANSACTION message.
func EncodeTransaction(tx model.Transaction) ([]byte, error) {
	return Encode(TypeTransaction, transactionPayload{Tx: tx})
}

// DecodeTransaction unwraps a TRANSACTION message's payload.
func DecodeTransaction(msg Message) (model.Transaction, error) {
	var p transactionPayload
	err := json.Unmarshal(msg.Payload, &p)
	return p.Tx, err
}
