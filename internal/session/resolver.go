// Package session turns an access_token cookie value into the user it names.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/tokens"
)

const CookieName = "access_token"

type TokenVerifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

type UserFinder interface {
	FindUserBySubject(ctx context.Context, username, email string) (*models.User, error)
}

type Resolver struct {
	Tokens TokenVerifier
	Users  UserFinder
}

func NewResolver(t TokenVerifier, u UserFinder) *Resolver {
	return &Resolver{Tokens: t, Users: u}
}

// Resolve never refreshes or extends the session.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: no session cookie", domain.ErrUnauthenticated)
	}

	claims, err := r.Tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	u, err := r.Users.FindUserBySubject(ctx, claims.Subject, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return u, nil
}
