package chain

import (
	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/model"
)

// genesisSeed is the fixed ASCII literal the genesis private key is derived
// from. Its SHA-256 digest is used directly as a secp256k1 scalar, so every
// implementation that hashes the same bytes owns the same genesis output.
const genesisSeed = "Those who have not learned history are doomed to repeat it."

// genesisReward is the amount of the one output genesis creates.
const genesisReward = 10

// GenesisKeyPair derives the deterministic key pair that owns the genesis
// output. It is exported so tests and tooling can reproduce the genesis
// identity without re-deriving the block itself.
func GenesisKeyPair() (cryptoadapter.KeyPair, error) {
	return cryptoadapter.KeyPairFromSeed([]byte(genesisSeed))
}

// buildGenesisBlock constructs the fixed, deterministic first block of every
// chain: time 0, nonce 0, a single transaction paying genesisReward to the
// genesis public key. Its transaction hash is prefixed with the literal "0"
// rather than a block time, which is what distinguishes the genesis
// output's hash preimage from an ordinary coinbase's.
func buildGenesisBlock() (model.Block, error) {
	kp, err := GenesisKeyPair()
	if err != nil {
		return model.Block{}, err
	}

	tx := model.Transaction{
		Outputs: []model.Output{
			{PublicKey: kp.Public, Amount: genesisReward},
		},
	}
	txHash, err := cryptoadapter.SHA256Hex([]byte("0"), tx.CanonicalCoinbase())
	if err != nil {
		return model.Block{}, err
	}
	tx.Hash = txHash

	block := model.Block{
		Time:  0,
		Txs:   []model.Transaction{tx},
		Nonce: 0,
	}
	blockHash, err := cryptoadapter.SHA256Hex(nil, block.Canonical())
	if err != nil {
		return model.Block{}, err
	}
	block.Hash = blockHash

	return block, nil
}
