package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/federated"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/tokens"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindLoginCandidates(ctx context.Context, login string) ([]models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	UserExists(ctx context.Context, id uint) (bool, error)
	ListUsers(ctx context.Context, only *uint, offset, limit int) (int64, []models.User, error)
	UpdateUsername(ctx context.Context, id uint, username string) (*models.User, error)
	UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	FindPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, owner *uint, offset, limit int) (int64, []models.Post, error)
	SearchPosts(ctx context.Context, text string, owner *uint, offset, limit int) (int64, []models.Post, error)
	FindPostsByIDs(ctx context.Context, ids []uint, owner *uint) ([]models.Post, error)
}

type TokenIssuer interface {
	Issue(id tokens.Identity) (string, time.Time, error)
}

type FederatedVerifier interface {
	Verify(ctx context.Context, raw string) (*federated.Identity, error)
}

// SearchIndex is the optional full-text index for posts.
type SearchIndex interface {
	IndexPost(ctx context.Context, p models.Post) error
	DeletePost(ctx context.Context, id uint) error
	Search(ctx context.Context, text string, owner *uint, from, size int) (int64, []uint, error)
}

type Page[T any] struct {
	Total int64
	Items []T
}

func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Error("publish_event_error", "type", e.Type, "error", err)
	}
}
