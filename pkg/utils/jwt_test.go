package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := IssueSessionToken("session-secret", 42, time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken("session-secret", token)
	require.NoError(t, err)

	userID, err := claims.ParseUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, sessionIssuer, claims.Issuer)
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	token, err := IssueSessionToken("session-secret", 42, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseSessionTokenExpired(t *testing.T) {
	token, err := IssueSessionToken("session-secret", 42, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken("session-secret", token)
	assert.Error(t, err)
}
