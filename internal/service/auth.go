package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/federated"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/tokens"
	"github.com/Skotchmaster/blog/pkg/hash"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
	Google FederatedVerifier
	Events events.Publisher
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login checks a username or email against the stored password hash.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", domain.ErrValidation)
	}

	candidates, err := s.Users.FindLoginCandidates(ctx, login)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if len(candidates) == 0 {
		hash.Waste(password)
		return nil, domain.ErrInvalidCredentials
	}

	for i := range candidates {
		u := &candidates[i]
		if !u.HasPassword() {
			continue
		}
		if hash.CheckPassword(*u.PasswordHash, password) {
			return s.issue(u)
		}
	}
	return nil, domain.ErrInvalidCredentials
}

// LoginFederated signs a Google user in, provisioning an account on first use.
func (s *AuthService) LoginFederated(ctx context.Context, raw string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login_federated")

	if s.Google == nil {
		return nil, fmt.Errorf("%w: federated login is not configured", domain.ErrFederatedTokenInvalid)
	}
	id, err := s.Google.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	u, err := s.Users.FindUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.provision(ctx, id)
		if err != nil {
			l.Error("provision_failed", "error", err)
			return nil, err
		}
	default:
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) provision(ctx context.Context, id *federated.Identity) (*models.User, error) {
	name := id.Name
	if name == "" {
		name, _, _ = strings.Cut(id.Email, "@")
	}
	if r := []rune(name); len(r) > maxUsernameLen {
		name = string(r[:maxUsernameLen])
	}

	u := &models.User{Username: name, Email: id.Email, Role: models.RoleUser}
	err := s.Users.CreateUser(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		return s.Users.FindUserByEmail(ctx, id.Email)
	}
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserCreated, UserID: u.ID, ActorID: u.ID, Name: u.Username, Role: u.Role.String()})
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*LoginResult, error) {
	token, exp, err := s.Tokens.Issue(tokens.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}
