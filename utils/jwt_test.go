package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlabs/dms/config"
)

func init() {
	config.SetForTesting(config.AppConfig{JWTSecret: "test-secret"})
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("alice", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	// Flip a char in the signature segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	_, err = ParseToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ParseToken(tok)
		assert.Error(t, err, "token %q should be rejected", tok)
	}
}
