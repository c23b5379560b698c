// Package node ties every other component into one aggregate guarded by a
// single exclusive lock: the chain, its UTXO set, the mempool, the local
// wallet, the miner, and the peer set. Every operation that reads or
// mutates shared state goes through Node so no two goroutines ever see it
// mid-update.
package node

import (
	"context"
	"sync"

	"github.com/corvidchain/corvid/chain"
	"github.com/corvidchain/corvid/eventlog"
	"github.com/corvidchain/corvid/mempool"
	"github.com/corvidchain/corvid/miner"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/p2p"
	"github.com/corvidchain/corvid/wallet"
)

// Config bundles what New needs to construct a Node.
type Config struct {
	Wallet    *wallet.Wallet
	EvHandler eventlog.Handler
}

// Node owns the entire mutable state of one running instance.
type Node struct {
	mu sync.Mutex

	chain  *chain.Chain
	pool   *mempool.Pool
	wallet *wallet.Wallet
	miner  *miner.Miner
	peers  *p2p.Server

	mining     bool
	cancelMine context.CancelFunc

	evHandler eventlog.Handler
}

// New constructs a Node with a fresh genesis chain and an empty mempool.
// The returned Node has no peer transport attached; call AttachTransport
// once one is constructed (it needs a reference back to Node's HandleMessage).
func New(cfg Config) (*Node, error) {
	c, err := chain.New()
	if err != nil {
		return nil, err
	}
	evHandler := cfg.EvHandler
	if evHandler == nil {
		evHandler = eventlog.Noop
	}
	return &Node{
		chain:     c,
		pool:      mempool.New(),
		wallet:    cfg.Wallet,
		miner:     miner.New(cfg.Wallet.PublicKey(), evHandler),
		evHandler: evHandler,
	}, nil
}

// AttachTransport wires a peer server into the node. Must be called once,
// before the server starts accepting or dialing connections.
func (n *Node) AttachTransport(server *p2p.Server) {
	n.peers = server
}

// PublicKey returns the node's own wallet public key.
func (n *Node) PublicKey() model.PublicKey {
	return n.wallet.PublicKey()
}

// Balance returns the node's own wallet balance against the current UTXO
// set.
func (n *Node) Balance() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.wallet.Balance(n.chain.UTXOs)
}

// ChainSnapshot returns a copy of the current block list.
func (n *Node) ChainSnapshot() []model.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Block, len(n.chain.Blocks))
	copy(out, n.chain.Blocks)
	return out
}

// UTXOs returns every unspent output currently tracked.
func (n *Node) UTXOs() []model.UTXO {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.UTXOs.All()
}

// PoolSize returns the number of pending transactions.
func (n *Node) PoolSize() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Len()
}

// BlockTimes returns every block's timestamp, used to display the
// inter-block interval schedule.
func (n *Node) BlockTimes() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.BlockTimes()
}

// PeerAddrs returns the addresses of every currently connected peer.
func (n *Node) PeerAddrs() []string {
	if n.peers == nil {
		return nil
	}
	return n.peers.Peers()
}

// ConnectPeer dials addr and adds it to the peer set.
func (n *Node) ConnectPeer(addr string) error {
	return n.peers.Dial(addr)
}

// Send builds, signs, and locally admits a transaction paying amount to
// recipient from the node's own wallet, then gossips it to every peer.
func (n *Node) Send(amount int64, recipient model.PublicKey) (model.Transaction, error) {
	n.mu.Lock()
	tx, err := n.wallet.MakeTx(amount, recipient, n.chain.UTXOs)
	if err != nil {
		n.mu.Unlock()
		return model.Transaction{}, err
	}
	err = n.pool.AddTx(tx, n.chain.UTXOs)
	n.mu.Unlock()
	if err != nil {
		return model.Transaction{}, err
	}

	n.evHandler("node: send: accepted tx %s", tx.Hash)
	n.broadcastTx(tx, "")
	return tx, nil
}

// ClearPool empties the pending transaction pool.
func (n *Node) ClearPool() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pool.Clear()
}

// broadcastTx relays tx to every peer except the one identified by
// except, which is empty for a transaction originating from this node's
// own wallet.
func (n *Node) broadcastTx(tx model.Transaction, except string) {
	if n.peers == nil {
		return
	}
	raw, err := p2p.EncodeTransaction(tx)
	if err != nil {
		n.evHandler("node: broadcastTx: encode failed: %s", err)
		return
	}
	n.peers.BroadcastExcept(raw, except)
}

// broadcastLatestBlock relays block to every peer except the one
// identified by except, which is empty for a block this node mined itself.
func (n *Node) broadcastLatestBlock(block model.Block, except string) {
	if n.peers == nil {
		return
	}
	raw, err := p2p.EncodeLatestBlock(block)
	if err != nil {
		n.evHandler("node: broadcastLatestBlock: encode failed: %s", err)
		return
	}
	n.peers.BroadcastExcept(raw, except)
}
