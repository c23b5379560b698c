package cryptoadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256HexIsDeterministic(t *testing.T) {
	h1, err := SHA256Hex([]byte("prefix"), map[string]int{"a": 1})
	require.NoError(t, err)
	h2, err := SHA256Hex([]byte("prefix"), map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.True(t, h1.Valid())
}

func TestSHA256HexPrefixMatters(t *testing.T) {
	h1, err := SHA256Hex([]byte("a"), "same")
	require.NoError(t, err)
	h2, err := SHA256Hex([]byte("b"), "same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestSHA256HexPayloadMatters(t *testing.T) {
	h1, err := SHA256Hex(nil, "one")
	require.NoError(t, err)
	h2, err := SHA256Hex(nil, "two")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
