// Package federated verifies Google ID tokens against Google's published keys.
package federated

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thejerf/abtime"

	"github.com/Skotchmaster/blog/internal/domain"
)

const (
	DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	DefaultTimeout = 5 * time.Second
	clockSkew      = 10 * time.Second
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// KeySet resolves signing keys for a token. keyfunc.Keyfunc satisfies it.
type KeySet interface {
	KeyfuncCtx(ctx context.Context) jwt.Keyfunc
}

type Identity struct {
	Email string
	Name  string
}

type Config struct {
	ClientID string
	Timeout  time.Duration
}

type Verifier struct {
	keys     KeySet
	clientID string
	timeout  time.Duration
	clock    abtime.AbstractTime
}

func NewVerifier(keys KeySet, cfg Config, clock abtime.AbstractTime) (*Verifier, error) {
	if keys == nil {
		return nil, errors.New("federated: nil key set")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("federated: empty client id")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &Verifier{keys: keys, clientID: cfg.ClientID, timeout: cfg.Timeout, clock: clock}, nil
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// verified treats an absent claim as verified; Google sends either a bool or "true"/"false".
func (c *googleClaims) verified() bool {
	switch v := c.EmailVerified.(type) {
	case nil:
		return true
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrFederatedTokenInvalid)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var claims googleClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, v.keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFederatedTokenInvalid, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrFederatedTokenInvalid
	}
	if _, ok := googleIssuers[claims.Issuer]; !ok {
		return nil, fmt.Errorf("%w: unexpected issuer %q", domain.ErrFederatedTokenInvalid, claims.Issuer)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", domain.ErrFederatedTokenInvalid)
	}
	if !claims.verified() {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrFederatedTokenInvalid)
	}

	return &Identity{Email: claims.Email, Name: strings.TrimSpace(claims.Name)}, nil
}
