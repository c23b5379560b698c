// Package work implements the proof-of-work difficulty schedule: per-block
// actual difficulty, the next required difficulty, and the cumulative chain
// work used for fork choice.
package work

import (
	"encoding/hex"
	"math/big"

	"github.com/corvidchain/corvid/model"
)

// clampMin and clampMax bound NextDifficulty at every prefix.
const (
	clampMin = 0
	clampMax = 256

	fastInterval = 5  // seconds; below this the schedule tightens
	slowInterval = 20 // seconds; above this the schedule loosens
)

// BlockDifficulty returns the number of leading zero bits in the binary
// expansion of block.Hash.
func BlockDifficulty(hash model.Hash) int {
	raw, err := hex.DecodeString(string(hash))
	if err != nil {
		return 0
	}
	zeros := 0
	for _, b := range raw {
		if b == 0 {
			zeros += 8
			continue
		}
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<uint(bit)) != 0 {
				return zeros
			}
			zeros++
		}
	}
	return zeros
}

// NextDifficulty walks the chain's inter-block intervals and returns the
// difficulty the next block must meet or exceed. It targets a ten-second
// spacing: intervals under five seconds ratchet the requirement up by one,
// intervals over twenty seconds ease it down by one, everything in between
// leaves it unchanged. The accumulator is clamped to [0, 256] after every
// step so an easy chain can never go negative.
func NextDifficulty(blockTimes []int64) int {
	d := 0
	for i := 1; i < len(blockTimes); i++ {
		interval := blockTimes[i] - blockTimes[i-1]
		switch {
		case interval < fastInterval:
			d++
		case interval > slowInterval:
			d--
		}
		if d < clampMin {
			d = clampMin
		}
		if d > clampMax {
			d = clampMax
		}
	}
	return d
}

// ChainDifficulty returns the cumulative work of a chain: the sum of
// 2^blockDifficulty over every block's hash. Chain work grows unboundedly
// as difficulty rises, so this is computed with arbitrary-precision
// integers rather than float64: summing 2^d in floating
// point silently loses precision past d around 53 and can make two forks
// compare equal when they are not, corrupting fork choice.
func ChainDifficulty(hashes []model.Hash) *big.Int {
	total := new(big.Int)
	one := big.NewInt(1)
	for _, h := range hashes {
		d := BlockDifficulty(h)
		term := new(big.Int).Lsh(one, uint(d))
		total.Add(total, term)
	}
	return total
}
