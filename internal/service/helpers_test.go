package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"

	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/repo"
	"github.com/Skotchmaster/blog/internal/testutil"
	"github.com/Skotchmaster/blog/internal/tokens"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	repo   *repo.GormRepo
	events *recorder
	issuer *tokens.Issuer
	users  *UserService
	posts  *PostService
	auth   *AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	r := repo.New(testutil.NewDB(t))
	rec := &recorder{}
	iss, err := tokens.NewIssuer(tokens.Settings{Secret: []byte("test-secret"), Algorithm: "HS256", TTL: time.Hour},
		abtime.NewManualAtTime(time.Unix(1_700_000_000, 0)))
	require.NoError(t, err)

	return &env{
		repo:   r,
		events: rec,
		issuer: iss,
		users:  &UserService{Repo: r, Events: rec, EmailDomain: "gmail.com"},
		posts:  &PostService{Repo: r, Users: r, Events: rec},
		auth:   &AuthService{Users: r, Tokens: iss, Events: rec},
	}
}

func (e *env) seed(t *testing.T, name, password string, role models.Role) *models.User {
	t.Helper()
	u, err := e.users.create(context.Background(), CreateUserInput{Username: name, Password: password, Role: role})
	require.NoError(t, err)
	return u
}
