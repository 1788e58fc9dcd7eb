package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/tokens"
)

type fakeUsers struct {
	users []models.User
	err   error
}

func (f *fakeUsers) FindUserBySubject(_ context.Context, username, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if f.users[i].Username == username && f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func setup(t *testing.T) (*tokens.Issuer, *abtime.ManualTime) {
	t.Helper()
	clock := abtime.NewManualAtTime(time.Unix(1_700_000_000, 0))
	iss, err := tokens.NewIssuer(tokens.Settings{Secret: []byte("s"), Algorithm: "HS256", TTL: time.Hour}, clock)
	require.NoError(t, err)
	return iss, clock
}

func TestResolve(t *testing.T) {
	t.Parallel()

	iss, clock := setup(t)
	users := &fakeUsers{users: []models.User{{ID: 1, Username: "alice", Email: "alice@x", Role: models.RoleUser}}}
	r := NewResolver(iss, users)

	raw, _, err := iss.Issue(tokens.Identity{UserID: 1, Username: "alice", Email: "alice@x", Role: "user"})
	require.NoError(t, err)

	u, err := r.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	t.Run("empty cookie", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "")
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "not-a-token")
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
		require.ErrorIs(t, err, tokens.ErrInvalidToken)
	})

	t.Run("renamed user", func(t *testing.T) {
		other, _, err := iss.Issue(tokens.Identity{UserID: 1, Username: "alice-old", Email: "alice@x", Role: "user"})
		require.NoError(t, err)
		_, err = r.Resolve(context.Background(), other)
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewResolver(iss, &fakeUsers{err: errors.New("db down")})
		_, err := broken.Resolve(context.Background(), raw)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
	})

	clock.Advance(2 * time.Hour)
	_, err = r.Resolve(context.Background(), raw)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	require.ErrorIs(t, err, tokens.ErrTokenExpired)
}
