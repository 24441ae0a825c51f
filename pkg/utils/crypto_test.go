package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestSealOpenTokenRoundTrip(t *testing.T) {
	sealed, err := SealToken("platform-access-token", testKey)
	require.NoError(t, err)
	require.NotEmpty(t, sealed)

	opened, err := OpenToken(sealed, testKey)
	require.NoError(t, err)
	assert.Equal(t, "platform-access-token", opened)
}

func TestOpenTokenWrongKeyFails(t *testing.T) {
	sealed, err := SealToken("platform-access-token", testKey)
	require.NoError(t, err)

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	_, err = OpenToken(sealed, otherKey)
	assert.Error(t, err)
}

func TestOpenTokenRejectsGarbage(t *testing.T) {
	_, err := OpenToken("not base64!!", testKey)
	assert.Error(t, err)

	_, err = OpenToken("c2hvcnQ=", testKey) // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestSealTokenRejectsBadKeyLength(t *testing.T) {
	_, err := SealToken("token", []byte("too-short"))
	assert.Error(t, err)
}
