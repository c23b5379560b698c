// Package chain owns the block sequence and the canonical UTXO set, and
// implements block append and fork-choice chain-swap.
package chain

import (
	"math/big"
	"time"

	"github.com/corvidchain/corvid/chainerr"
	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/txvalidator"
	"github.com/corvidchain/corvid/utxoset"
	"github.com/corvidchain/corvid/work"
)

// maxFutureDrift bounds how far into the future a block's time may claim
// to be.
const maxFutureDrift = 10 * time.Second

// safeIntegerLimit is the exclusive ceiling checkBlockStructure enforces on
// a block's time, so that field stays representable as an exact
// double-precision float for implementations that need to interoperate
// across that boundary. Amounts are not checked against it.
const safeIntegerLimit = int64(1) << 53

// Chain is an ordered sequence of blocks starting from the fixed genesis,
// together with the UTXO set that reflects every block confirmed so far.
// Chain is not safe for concurrent use; callers serialize access (node.Node
// holds the single exclusive lock that guards it).
type Chain struct {
	Blocks []model.Block
	UTXOs  *utxoset.Set
}

// New constructs a chain containing only the genesis block and its single
// UTXO.
func New() (*Chain, error) {
	genesis, err := buildGenesisBlock()
	if err != nil {
		return nil, err
	}
	utxos := utxoset.New()
	coinbase := genesis.Coinbase()
	for i, out := range coinbase.Outputs {
		utxos.Put(model.UTXO{Hash: coinbase.Hash, Index: i, PublicKey: out.PublicKey, Amount: out.Amount})
	}
	return &Chain{Blocks: []model.Block{genesis}, UTXOs: utxos}, nil
}

// Tip returns the most recently appended block.
func (c *Chain) Tip() model.Block {
	return c.Blocks[len(c.Blocks)-1]
}

// Height returns the number of blocks in the chain, genesis included.
func (c *Chain) Height() int {
	return len(c.Blocks)
}

// BlockTimes returns every block's time field in chain order, the input
// work.NextDifficulty expects.
func (c *Chain) BlockTimes() []int64 {
	times := make([]int64, len(c.Blocks))
	for i, b := range c.Blocks {
		times[i] = b.Time
	}
	return times
}

// Hashes returns every block's hash in chain order, the input
// work.ChainDifficulty expects.
func (c *Chain) Hashes() []model.Hash {
	hashes := make([]model.Hash, len(c.Blocks))
	for i, b := range c.Blocks {
		hashes[i] = b.Hash
	}
	return hashes
}

// NextDifficulty returns the difficulty the next block appended to c must
// meet or exceed.
func (c *Chain) NextDifficulty() int {
	return work.NextDifficulty(c.BlockTimes())
}

// Difficulty returns the chain's cumulative proof-of-work.
func (c *Chain) Difficulty() *big.Int {
	return work.ChainDifficulty(c.Hashes())
}

// AddBlock validates block against c's tip and UTXO set and, on success,
// appends it to c and replaces c's UTXO set with the result of applying it.
// On any failure, c is left completely unchanged.
func (c *Chain) AddBlock(block model.Block) error {
	validated, workingUTXOs, err := c.validateBlock(block, c.Tip().Hash, c.UTXOs)
	if err != nil {
		return err
	}
	c.Blocks = append(c.Blocks, validated)
	c.UTXOs = workingUTXOs
	return nil
}

// validateBlock runs every structural and consistency check against block,
// given the hash of the block it must extend and the UTXO set to validate
// against.
// It returns the reconstructed block (carrying block's nonce and the
// recomputed hash) and the resulting UTXO set, neither of which is committed to
// anything by this function.
func (c *Chain) validateBlock(block model.Block, prevHash model.Hash, base *utxoset.Set) (model.Block, *utxoset.Set, error) {
	if err := checkBlockStructure(block); err != nil {
		return model.Block{}, nil, err
	}

	prevTime := int64(0)
	if len(c.Blocks) > 0 {
		prevTime = c.Blocks[len(c.Blocks)-1].Time
	}
	// A candidate chain being replayed from genesis calls this per block in
	// order, so c.Blocks reflects only the blocks accepted so far in that
	// replay; for the live chain that's simply the current tip.
	if block.Time <= prevTime {
		return model.Block{}, nil, chainerr.Consistencyf("bad-timestamp", "block time %d does not exceed previous block time %d", block.Time, prevTime)
	}
	if block.Time > time.Now().Add(maxFutureDrift).Unix() {
		return model.Block{}, nil, chainerr.Consistencyf("bad-timestamp", "block time %d too far in the future", block.Time)
	}

	working := base.Copy()
	validated := model.Block{Time: block.Time, Txs: make([]model.Transaction, 0, len(block.Txs))}

	nonCoinbase := block.NonCoinbaseTxs()
	for _, tx := range nonCoinbase {
		if err := txvalidator.AddTx(tx, &validated, working); err != nil {
			return model.Block{}, nil, err
		}
	}
	if err := txvalidator.AddCoinbase(block.Coinbase(), &validated, working); err != nil {
		return model.Block{}, nil, err
	}

	validated.Nonce = block.Nonce
	wantHash, err := cryptoadapter.SHA256Hex([]byte(prevHash), validated.Canonical())
	if err != nil {
		return model.Block{}, nil, err
	}
	if wantHash != block.Hash {
		return model.Block{}, nil, chainerr.Consistencyf("hash-mismatch", "computed %s, block claims %s", wantHash, block.Hash)
	}
	validated.Hash = wantHash

	required := work.NextDifficulty(c.BlockTimes())
	if work.BlockDifficulty(validated.Hash) < required {
		return model.Block{}, nil, chainerr.Consistencyf("insufficient-difficulty", "block difficulty %d below required %d", work.BlockDifficulty(validated.Hash), required)
	}

	return validated, working, nil
}

// checkBlockStructure rejects a block with the wrong shape before any
// consensus-level check runs.
func checkBlockStructure(block model.Block) error {
	if block.Time < 0 || block.Time >= safeIntegerLimit {
		return chainerr.Structuralf("time", "block time %d out of range", block.Time)
	}
	if len(block.Txs) == 0 {
		return chainerr.Structuralf("txs", "block must contain at least a coinbase transaction")
	}
	if block.Nonce < 0 {
		return chainerr.Structuralf("nonce", "block nonce must be non-negative")
	}
	if !block.Hash.Valid() {
		return chainerr.Structuralf("hash", "malformed block hash %q", block.Hash)
	}
	return nil
}

// SwapChains validates candidate by rebuilding it from genesis and, if its
// cumulative work strictly exceeds c's, atomically replaces c's blocks and
// UTXO set with the rebuilt ones. It returns the difference in cumulative
// work (candidate minus current); a non-positive delta means no swap
// occurred. Equal-work candidates are rejected: ties are never broken by
// arrival time.
func (c *Chain) SwapChains(candidate []model.Block) (*big.Int, error) {
	if len(candidate) == 0 || candidate[0].Hash != c.Blocks[0].Hash {
		return nil, chainerr.Structuralf("candidate", "candidate chain does not share our genesis")
	}

	genesisOnly, err := New()
	if err != nil {
		return nil, err
	}
	replay := &Chain{Blocks: genesisOnly.Blocks, UTXOs: genesisOnly.UTXOs}

	for i := 1; i < len(candidate); i++ {
		validated, working, err := replay.validateBlock(candidate[i], replay.Tip().Hash, replay.UTXOs)
		if err != nil {
			return nil, err
		}
		replay.Blocks = append(replay.Blocks, validated)
		replay.UTXOs = working
	}

	delta := new(big.Int).Sub(replay.Difficulty(), c.Difficulty())
	if delta.Sign() <= 0 {
		return delta, nil
	}

	c.Blocks = replay.Blocks
	c.UTXOs = replay.UTXOs
	return delta, nil
}
