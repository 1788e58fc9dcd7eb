package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
)

var start = time.Unix(1_700_000_000, 0)

func newTestIssuer(t *testing.T, secret string) (*Issuer, *abtime.ManualTime) {
	t.Helper()
	clock := abtime.NewManualAtTime(start)
	iss, err := NewIssuer(Settings{Secret: []byte(secret), Algorithm: "HS256", TTL: DefaultTTL}, clock)
	require.NoError(t, err)
	return iss, clock
}

func alice() Identity {
	return Identity{UserID: 7, Username: "alice", Email: "alice@x", Role: "user"}
}

func TestNewIssuer_RejectsBadSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Settings
	}{
		{name: "empty secret", s: Settings{Algorithm: "HS256", TTL: time.Minute}},
		{name: "rsa algorithm", s: Settings{Secret: []byte("k"), Algorithm: "RS256", TTL: time.Minute}},
		{name: "unknown algorithm", s: Settings{Secret: []byte("k"), Algorithm: "XX999", TTL: time.Minute}},
		{name: "zero ttl", s: Settings{Secret: []byte("k"), Algorithm: "HS256"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewIssuer(tt.s, abtime.NewManual())
			require.Error(t, err)
		})
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	iss, _ := newTestIssuer(t, "k1")
	raw, exp, err := iss.Issue(alice())
	require.NoError(t, err)
	assert.Equal(t, start.Add(60*time.Minute), exp)

	claims, err := iss.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice@x", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, alice(), claims.Identity())
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()

	iss, clock := newTestIssuer(t, "k1")
	raw, _, err := iss.Issue(alice())
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = iss.Verify(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = iss.Verify(raw)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	iss1, _ := newTestIssuer(t, "k1")
	iss2, _ := newTestIssuer(t, "k2")

	raw, _, err := iss1.Issue(alice())
	require.NoError(t, err)

	_, err = iss2.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	clock := abtime.NewManualAtTime(start)
	hs512, err := NewIssuer(Settings{Secret: []byte("k1"), Algorithm: "HS512", TTL: time.Hour}, clock)
	require.NoError(t, err)
	hs256, _ := newTestIssuer(t, "k1")

	raw, _, err := hs512.Issue(alice())
	require.NoError(t, err)

	_, err = hs256.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_NoneAlgorithm(t *testing.T) {
	t.Parallel()

	iss, _ := newTestIssuer(t, "k1")
	claims := Claims{
		Email: "alice@x",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	iss, _ := newTestIssuer(t, "k1")
	claims := Claims{
		Email:            "alice@x",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k1"))
	require.NoError(t, err)

	_, err = iss.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	iss, _ := newTestIssuer(t, "k1")
	raw, _, err := iss.Issue(alice())
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "a.b.c", raw[:len(raw)-3], strings.Replace(raw, ".", "", 1)} {
		_, err := iss.Verify(bad)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}

func TestIssueWithTTL(t *testing.T) {
	t.Parallel()

	iss, clock := newTestIssuer(t, "k1")
	raw, exp, err := iss.IssueWithTTL(alice(), 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, start.Add(5*time.Minute), exp)

	clock.Advance(6 * time.Minute)
	_, err = iss.Verify(raw)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, _, err = iss.IssueWithTTL(alice(), 0)
	require.Error(t, err)
}
