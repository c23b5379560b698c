package node

import (
	"context"

	"github.com/corvidchain/corvid/miner"
)

// StartMining launches a background mining loop if one is not already
// running. Each iteration snapshots the chain and pool, attempts a
// solution, and on success commits and announces the new block before
// immediately starting the next attempt against the updated tip.
func (n *Node) StartMining() {
	n.mu.Lock()
	if n.mining {
		n.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.mining = true
	n.cancelMine = cancel
	n.mu.Unlock()

	go n.mineLoop(ctx)
}

// StopMining cancels the running mining loop, if any.
func (n *Node) StopMining() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.mining {
		return
	}
	n.cancelMine()
	n.mining = false
}

// IsMining reports whether a mining loop is currently active.
func (n *Node) IsMining() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mining
}

func (n *Node) mineLoop(ctx context.Context) {
	n.evHandler("node: mining: started")
	defer n.evHandler("node: mining: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n.mu.Lock()
		snap := miner.Snapshot{
			Tip:                n.chain.Tip(),
			RequiredDifficulty: n.chain.NextDifficulty(),
			PendingTxs:         n.pool.Txs(),
		}
		n.mu.Unlock()

		block, found, err := n.miner.Attempt(ctx, snap)
		if err != nil {
			n.evHandler("node: mining: attempt error: %s", err)
			continue
		}
		if !found {
			continue
		}

		n.mu.Lock()
		err = n.chain.AddBlock(block)
		if err == nil {
			n.pool.RemoveBlockTxs(block)
		}
		n.mu.Unlock()

		if err != nil {
			n.evHandler("node: mining: solved block rejected by own chain: %s", err)
			continue
		}

		n.evHandler("node: mining: mined block %s", block.Hash)
		n.broadcastLatestBlock(block, "")
	}
}
