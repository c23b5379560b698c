package cryptoadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPairFromSeedDeterministic(t *testing.T) {
	kp1, err := KeyPairFromSeed([]byte("same seed"))
	require.NoError(t, err)
	kp2, err := KeyPairFromSeed([]byte("same seed"))
	require.NoError(t, err)

	assert.Equal(t, kp1.Public, kp2.Public)
}

func TestKeyPairFromSeedDistinctSeeds(t *testing.T) {
	kp1, err := KeyPairFromSeed([]byte("seed one"))
	require.NoError(t, err)
	kp2, err := KeyPairFromSeed([]byte("seed two"))
	require.NoError(t, err)

	assert.NotEqual(t, kp1.Public, kp2.Public)
}

func TestParsePublicKeyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	pub, err := ParsePublicKey(kp.Public)
	require.NoError(t, err)
	assert.Equal(t, kp.Public, EncodePublicKey(pub))
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePublicKey("not-hex-and-too-short")
	assert.Error(t, err)
}
