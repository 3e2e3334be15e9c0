package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDecodeRoundTrip(t *testing.T) {
	sc := SigningContext{Secret: []byte("test-access-secret"), TTL: 15 * time.Minute}

	token, err := Issue("alice", sc)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, expiresAt, err := Decode(token, sc)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
	assert.WithinDuration(t, time.Now().Add(sc.TTL), expiresAt, 5*time.Second)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	issueCtx := SigningContext{Secret: []byte("access-secret"), TTL: time.Minute}
	otherCtx := SigningContext{Secret: []byte("refresh-secret"), TTL: time.Minute}

	token, err := Issue("alice", issueCtx)
	require.NoError(t, err)

	_, _, err = Decode(token, otherCtx)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsExpired(t *testing.T) {
	sc := SigningContext{Secret: []byte("secret"), TTL: -time.Minute}

	token, err := Issue("alice", sc)
	require.NoError(t, err)

	_, _, err = Decode(token, sc)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	sc := SigningContext{Secret: []byte("secret"), TTL: time.Minute}

	for _, tok := range []string{"", "not-a-token", "aaaa.bbbb.cccc"} {
		_, _, err := Decode(tok, sc)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	sc := SigningContext{Secret: []byte("secret"), TTL: time.Minute}

	a, err := Issue("alice", sc)
	require.NoError(t, err)
	b, err := Issue("alice", sc)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
