package work

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidchain/corvid/model"
)

func hashWithPrefix(prefixByte string) model.Hash {
	return model.Hash(prefixByte + strings.Repeat("0", 64-len(prefixByte)))
}

func TestBlockDifficultyCountsLeadingZeroBits(t *testing.T) {
	cases := []struct {
		hash model.Hash
		want int
	}{
		{hashWithPrefix("ff"), 0},
		{hashWithPrefix("00"), 256},
		{hashWithPrefix("7f"), 1},
		{hashWithPrefix("3f"), 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BlockDifficulty(c.hash))
	}
}

func TestNextDifficultyRatchetsUpOnFastBlocks(t *testing.T) {
	times := []int64{0, 1, 2, 3, 4}
	assert.Equal(t, 4, NextDifficulty(times))
}

func TestNextDifficultyRatchetsDownOnSlowBlocks(t *testing.T) {
	times := []int64{0, 30, 60}
	assert.Equal(t, 0, NextDifficulty(times))
}

func TestNextDifficultyClampsAtZero(t *testing.T) {
	times := []int64{0, 100, 200, 300}
	assert.Equal(t, 0, NextDifficulty(times))
}

func TestNextDifficultyClampsAtCeiling(t *testing.T) {
	times := make([]int64, 0, 300)
	var t0 int64
	times = append(times, t0)
	for i := 0; i < 300; i++ {
		t0++
		times = append(times, t0)
	}
	assert.Equal(t, 256, NextDifficulty(times))
}

func TestNextDifficultyStableWithinTargetWindow(t *testing.T) {
	times := []int64{0, 10, 20, 30}
	assert.Equal(t, 0, NextDifficulty(times))
}

func TestChainDifficultyIsMonotonicWithMoreBlocks(t *testing.T) {
	hashes := []model.Hash{hashWithPrefix("00")}
	before := ChainDifficulty(hashes)

	hashes = append(hashes, hashWithPrefix("ff"))
	after := ChainDifficulty(hashes)

	assert.Equal(t, 1, after.Cmp(before))
}

func TestChainDifficultyStrictlyPositive(t *testing.T) {
	hashes := []model.Hash{hashWithPrefix("ff")}
	assert.Equal(t, 1, ChainDifficulty(hashes).Sign())
}
