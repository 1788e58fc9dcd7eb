package federated

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"

	"github.com/Skotchmaster/blog/internal/domain"
)

const clientID = "client-123.apps.googleusercontent.com"

var now = time.Unix(1_700_000_000, 0)

type staticKeys struct {
	key *rsa.PublicKey
	err error
}

func (s staticKeys) KeyfuncCtx(ctx context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) {
		if s.err != nil {
			return nil, s.err
		}
		return s.key, nil
	}
}

type blockingKeys struct{}

func (blockingKeys) KeyfuncCtx(ctx context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func mustKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            clientID,
		"sub":            "10769150350006150715113082367",
		"email":          "jane.doe@gmail.com",
		"email_verified": true,
		"name":           "Jane Doe",
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func newVerifier(t *testing.T, keys KeySet) *Verifier {
	t.Helper()
	v, err := NewVerifier(keys, Config{ClientID: clientID, Timeout: time.Second}, abtime.NewManualAtTime(now))
	require.NoError(t, err)
	return v
}

func TestVerify(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	other := mustKey(t)

	tests := []struct {
		name    string
		mutate  func(jwt.MapClaims)
		signer  *rsa.PrivateKey
		wantErr bool
	}{
		{name: "valid", mutate: func(jwt.MapClaims) {}},
		{name: "bare issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "accounts.google.com" }},
		{name: "wrong audience", mutate: func(c jwt.MapClaims) { c["aud"] = "someone-else" }, wantErr: true},
		{name: "wrong issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example" }, wantErr: true},
		{name: "expired within skew", mutate: func(c jwt.MapClaims) { c["exp"] = now.Add(-5 * time.Second).Unix() }},
		{name: "expired beyond skew", mutate: func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Minute).Unix() }, wantErr: true},
		{name: "missing exp", mutate: func(c jwt.MapClaims) { delete(c, "exp") }, wantErr: true},
		{name: "missing email", mutate: func(c jwt.MapClaims) { delete(c, "email") }, wantErr: true},
		{name: "email unverified", mutate: func(c jwt.MapClaims) { c["email_verified"] = false }, wantErr: true},
		{name: "email unverified string", mutate: func(c jwt.MapClaims) { c["email_verified"] = "false" }, wantErr: true},
		{name: "bad signature", mutate: func(jwt.MapClaims) {}, signer: other, wantErr: true},
	}

	v := newVerifier(t, staticKeys{key: &key.PublicKey})
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims := baseClaims()
			tt.mutate(claims)
			signer := key
			if tt.signer != nil {
				signer = tt.signer
			}

			id, err := v.Verify(context.Background(), sign(t, signer, claims))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrFederatedTokenInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jane.doe@gmail.com", id.Email)
			assert.Equal(t, "Jane Doe", id.Name)
		})
	}
}

func TestVerify_RejectsHMAC(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	v := newVerifier(t, staticKeys{key: &key.PublicKey})

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), raw)
	require.ErrorIs(t, err, domain.ErrFederatedTokenInvalid)
}

func TestVerify_KeySetError(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	v := newVerifier(t, staticKeys{err: errors.New("jwks unavailable")})

	_, err := v.Verify(context.Background(), sign(t, key, baseClaims()))
	require.ErrorIs(t, err, domain.ErrFederatedTokenInvalid)
}

func TestVerify_Timeout(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	v, err := NewVerifier(blockingKeys{}, Config{ClientID: clientID, Timeout: 50 * time.Millisecond}, abtime.NewManualAtTime(now))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), sign(t, key, baseClaims()))
	require.ErrorIs(t, err, domain.ErrFederatedTokenInvalid)
}

func TestVerify_Empty(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	v := newVerifier(t, staticKeys{key: &key.PublicKey})
	_, err := v.Verify(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrFederatedTokenInvalid)
}

func TestNewVerifier_RequiresClientID(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(staticKeys{}, Config{}, nil)
	require.Error(t, err)
}
