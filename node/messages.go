package node

import (
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/p2p"
)

// HandleMessage dispatches one decoded peer message. It is the callback
// passed to p2p.New and always runs with Node's lock held for the
// duration of whatever chain or pool mutation the message triggers.
func (n *Node) HandleMessage(peerID string, msg p2p.Message) {
	switch msg.Type {
	case p2p.TypeLatestBlock:
		n.handleLatestBlock(peerID, msg)
	case p2p.TypeBlockchain:
		n.handleBlockchain(peerID, msg)
	case p2p.TypeTransaction:
		n.handleTransaction(peerID, msg)
	default:
		n.evHandler("node: handleMessage: unknown message type %q from %s", msg.Type, peerID)
	}
}

// handleLatestBlock tries to extend the local chain with an announced
// block. On success it relays the announcement onward and drops any pool
// transactions the block confirmed. On failure — the sender may be on a
// different fork — it pushes our own full chain back to the sender
// (requestChain), so whichever side has less work can re-org.
func (n *Node) handleLatestBlock(peerID string, msg p2p.Message) {
	block, err := p2p.DecodeLatestBlock(msg)
	if err != nil {
		n.evHandler("node: handleLatestBlock: decode: %s", err)
		return
	}

	n.mu.Lock()
	err = n.chain.AddBlock(block)
	if err == nil {
		n.pool.RemoveBlockTxs(block)
	}
	n.mu.Unlock()

	if err != nil {
		n.evHandler("node: handleLatestBlock: from %s: could not extend tip: %s", peerID, err)
		n.requestChain(peerID)
		return
	}

	n.evHandler("node: handleLatestBlock: from %s: accepted block %s", peerID, block.Hash)
	n.broadcastLatestBlock(block, peerID)
}

// handleBlockchain evaluates a candidate full chain from a peer and swaps
// to it if it carries strictly more cumulative work. A successful swap
// invalidates every assumption pending pool transactions were checked
// against, so the pool is cleared rather than selectively reconciled. A
// candidate with strictly less work means the sender is behind on a fork
// we've already moved past, so we push our own chain back to it; equal
// work is the only case genuinely ignored.
func (n *Node) handleBlockchain(peerID string, msg p2p.Message) {
	blocks, err := p2p.DecodeBlockchain(msg)
	if err != nil {
		n.evHandler("node: handleBlockchain: decode: %s", err)
		return
	}

	n.mu.Lock()
	delta, err := n.chain.SwapChains(blocks)
	swapped := err == nil && delta.Sign() > 0
	weaker := err == nil && delta.Sign() < 0
	if swapped {
		n.pool.Clear()
	}
	tip := n.chain.Tip()
	n.mu.Unlock()

	if err != nil {
		n.evHandler("node: handleBlockchain: from %s: rejected: %s", peerID, err)
		return
	}
	if weaker {
		n.evHandler("node: handleBlockchain: from %s: weaker than current chain, sending ours", peerID)
		n.requestChain(peerID)
		return
	}
	if !swapped {
		n.evHandler("node: handleBlockchain: from %s: equal work, ignored", peerID)
		return
	}

	n.evHandler("node: handleBlockchain: from %s: swapped to new chain, tip %s", peerID, tip.Hash)
	n.broadcastLatestBlock(tip, peerID)
}

// handleTransaction admits a gossiped transaction into the local pool and,
// if it was new, relays it onward.
func (n *Node) handleTransaction(peerID string, msg p2p.Message) {
	tx, err := p2p.DecodeTransaction(msg)
	if err != nil {
		n.evHandler("node: handleTransaction: decode: %s", err)
		return
	}

	n.mu.Lock()
	err = n.pool.AddTx(tx, n.chain.UTXOs)
	n.mu.Unlock()

	if err != nil {
		n.evHandler("node: handleTransaction: from %s: rejected %s: %s", peerID, tx.Hash, err)
		return
	}

	n.evHandler("node: handleTransaction: from %s: accepted %s", peerID, tx.Hash)
	n.broadcastTx(tx, peerID)
}

// requestChain pushes our own full chain to peerID. A peer that is
// actually behind us adopts it via handleBlockchain; a peer that is ahead
// simply finds no more work in it and ignores it.
func (n *Node) requestChain(peerID string) {
	if n.peers == nil {
		return
	}
	n.mu.Lock()
	blocks := make([]model.Block, len(n.chain.Blocks))
	copy(blocks, n.chain.Blocks)
	n.mu.Unlock()

	raw, err := p2p.EncodeBlockchain(blocks)
	if err != nil {
		n.evHandler("node: requestChain: encode failed: %s", err)
		return
	}
	n.peers.SendTo(peerID, raw)
}
