package cryptoadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/model"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	hash, err := SHA256Hex(nil, "some payload")
	require.NoError(t, err)

	sig, err := Sign(kp.Private, hash)
	require.NoError(t, err)
	assert.True(t, sig.Valid())

	assert.NoError(t, Verify(kp.Private.PubKey(), hash, sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	hash, err := SHA256Hex(nil, "some payload")
	require.NoError(t, err)

	sig, err := Sign(kp.Private, hash)
	require.NoError(t, err)

	assert.Error(t, Verify(other.Private.PubKey(), hash, sig))
}

func TestVerifyRejectsTamperedHash(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	hash, err := SHA256Hex(nil, "some payload")
	require.NoError(t, err)
	sig, err := Sign(kp.Private, hash)
	require.NoError(t, err)

	tampered, err := SHA256Hex(nil, "different payload")
	require.NoError(t, err)

	assert.Error(t, Verify(kp.Private.PubKey(), tampered, sig))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	hash, err := SHA256Hex(nil, "some payload")
	require.NoError(t, err)

	assert.Error(t, Verify(kp.Private.PubKey(), hash, model.Signature("zz")))
}
