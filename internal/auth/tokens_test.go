package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/shoppyglobe/internal/auth"
)

func TestIssueAndVerify(t *testing.T) {
	tokens, err := auth.NewTokens("s3cret", 0)
	require.NoError(t, err)

	raw, err := tokens.Issue("u-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(raw, "."))

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyRejectsExpired(t *testing.T) {
	now := time.Now()
	issuer, err := auth.NewTokens("s3cret", time.Minute, auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	raw, err := issuer.Issue("u-1", "alice")
	require.NoError(t, err)

	later, err := auth.NewTokens("s3cret", time.Minute, auth.WithClock(func() time.Time { return now.Add(2 * time.Minute) }))
	require.NoError(t, err)
	_, err = later.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a, err := auth.NewTokens("one", 0)
	require.NoError(t, err)
	b, err := auth.NewTokens("two", 0)
	require.NoError(t, err)

	raw, err := a.Issue("u-1", "alice")
	require.NoError(t, err)
	_, err = b.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	tokens, err := auth.NewTokens("s3cret", 0)
	require.NoError(t, err)

	claims := auth.Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens, err := auth.NewTokens("s3cret", 0)
	require.NoError(t, err)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := tokens.Verify(raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, raw)
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := auth.NewTokens("", time.Hour)
	assert.Error(t, err)
}
