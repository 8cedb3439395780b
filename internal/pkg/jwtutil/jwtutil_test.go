package jwtutil

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedService(secret string, now time.Time) *Service {
	return NewService(secret).WithClock(func() time.Time { return now })
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := fixedService("super-secret", fixedNow)
	identity := Identity{UserID: 42, Username: "admin", Email: "admin@example.com"}

	token, err := svc.Issue(identity)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, fixedNow, claims.IssuedAt.Time.UTC())
	assert.Equal(t, fixedNow.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestIssue_Deterministic(t *testing.T) {
	t.Parallel()

	svc := fixedService("k", fixedNow)
	identity := Identity{UserID: 1, Username: "u", Email: "u@example.com"}

	a, err := svc.Issue(identity)
	require.NoError(t, err)
	b, err := svc.Issue(identity)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	token, err := fixedService("k", fixedNow).Issue(Identity{UserID: 1})
	require.NoError(t, err)

	later := fixedService("k", fixedNow.Add(TokenTTL+time.Minute))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)

	stillValid := fixedService("k", fixedNow.Add(TokenTTL-time.Minute))
	_, err = stillValid.Verify(token)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := fixedService("right-secret", fixedNow).Issue(Identity{UserID: 2})
	require.NoError(t, err)

	_, err = fixedService("wrong-secret", fixedNow).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	svc := fixedService("k", fixedNow)
	token, err := svc.Issue(Identity{UserID: 2, Username: "bob"})
	require.NoError(t, err)

	other, err := svc.Issue(Identity{UserID: 3, Username: "eve"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := fixedService("k", fixedNow)
	for _, raw := range []string{"", "not-a-token", "not.a.jwt", "a.b"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = fixedService("k", fixedNow).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	claims := Claims{UserID: 1}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = fixedService("k", fixedNow).Verify(token)
	assert.Error(t, err)
}
