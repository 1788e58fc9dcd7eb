// Package tokens issues and verifies the signed session tokens carried in the
// access_token cookie.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/thejerf/abtime"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const DefaultTTL = 60 * time.Minute

type Settings struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
}

// Identity is what gets embedded into a token.
type Identity struct {
	UserID   uint
	Username string
	Email    string
	Role     string
}

type Claims struct {
	Email  string `json:"email"`
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Username: c.Subject,
		Email:    c.Email,
		Role:     c.Role,
	}
}

type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  abtime.AbstractTime
}

func NewIssuer(s Settings, clock abtime.AbstractTime) (*Issuer, error) {
	if len(s.Secret) == 0 {
		return nil, errors.New("tokens: empty secret")
	}
	if s.Algorithm == "" {
		s.Algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(s.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("tokens: unsupported algorithm %q", s.Algorithm)
	}
	if s.TTL <= 0 {
		return nil, fmt.Errorf("tokens: ttl must be positive, got %s", s.TTL)
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}

	secret := make([]byte, len(s.Secret))
	copy(secret, s.Secret)

	return &Issuer{
		secret: secret,
		method: method,
		ttl:    s.TTL,
		clock:  clock,
	}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(id Identity) (string, time.Time, error) {
	return i.IssueWithTTL(id, i.ttl)
}

func (i *Issuer) IssueWithTTL(id Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("tokens: ttl must be positive, got %s", ttl)
	}
	if id.Username == "" || id.Email == "" {
		return "", time.Time{}, errors.New("tokens: identity requires username and email")
	}

	now := i.clock.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Email:  id.Email,
		UserID: id.UserID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, exp, nil
}

func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != i.method.Alg() {
			return nil, fmt.Errorf("unexpected sign method %q", t.Method.Alg())
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrInvalidToken)
	}
	return &claims, nil
}
