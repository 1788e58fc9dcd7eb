package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/policy"
	"github.com/Skotchmaster/blog/pkg/logging"
)

const (
	maxTitleLen   = 50
	maxContentLen = 255
)

type UserChecker interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

type PostService struct {
	Repo   PostStore
	Users  UserChecker
	Index  SearchIndex
	Events events.Publisher
}

type CreatePostInput struct {
	Title   string
	Content string
	UserID  *uint
}

type UpdatePostInput struct {
	Title   *string
	Content *string
	UserID  *uint
}

func validateText(field, v string, max int) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s longer than %d characters", domain.ErrValidation, field, max)
	}
	return nil
}

func (s *PostService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.Users.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d does not exist", domain.ErrReferentialIntegrity, id)
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, caller *models.User, in CreatePostInput) (*models.Post, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateText("title", in.Title, maxTitleLen); err != nil {
		return nil, err
	}
	if err := validateText("content", in.Content, maxContentLen); err != nil {
		return nil, err
	}

	owner := caller.ID
	if in.UserID != nil {
		owner = *in.UserID
	}
	if err := policy.RequireOwnerOrAdmin(caller, owner); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, owner); err != nil {
		return nil, err
	}

	p := &models.Post{Title: in.Title, Content: in.Content, UserID: owner}
	if err := s.Repo.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.Event{Type: events.PostCreated, PostID: p.ID, UserID: p.UserID, ActorID: caller.ID, Title: p.Title, Content: p.Content})
	return p, nil
}

func (s *PostService) Get(ctx context.Context, caller *models.User, id uint) (*models.Post, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.Repo.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(caller, p.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) List(ctx context.Context, caller *models.User, offset, limit int) (Page[models.Post], error) {
	scope, err := policy.ListScope(caller)
	if err != nil {
		return Page[models.Post]{}, err
	}
	total, items, err := s.Repo.ListPosts(ctx, scope, offset, limit)
	if err != nil {
		return Page[models.Post]{}, err
	}
	return Page[models.Post]{Total: total, Items: items}, nil
}

func (s *PostService) Update(ctx context.Context, caller *models.User, id uint, in UpdatePostInput) (*models.Post, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.Repo.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(caller, p.UserID); err != nil {
		return nil, err
	}

	if in.UserID != nil {
		if err := policy.CanReassignOwner(caller, p.UserID, *in.UserID); err != nil {
			return nil, err
		}
		if *in.UserID != p.UserID {
			if err := s.requireUser(ctx, *in.UserID); err != nil {
				return nil, err
			}
		}
		p.UserID = *in.UserID
	}
	if in.Title != nil {
		if err := validateText("title", *in.Title, maxTitleLen); err != nil {
			return nil, err
		}
		p.Title = *in.Title
	}
	if in.Content != nil {
		if err := validateText("content", *in.Content, maxContentLen); err != nil {
			return nil, err
		}
		p.Content = *in.Content
	}

	if err := s.Repo.UpdatePost(ctx, p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.Event{Type: events.PostUpdated, PostID: p.ID, UserID: p.UserID, ActorID: caller.ID, Title: p.Title, Content: p.Content})
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, caller *models.User, id uint) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	p, err := s.Repo.FindPostByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireOwnerOrAdmin(caller, p.UserID); err != nil {
		return err
	}
	if err := s.Repo.DeletePost(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeletePost(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "post_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.Event{Type: events.PostDeleted, PostID: id, UserID: p.UserID, ActorID: caller.ID})
	return nil
}

// Search uses the full-text index when one is configured and falls back to
// the database when it is absent or failing.
func (s *PostService) Search(ctx context.Context, caller *models.User, text string, offset, limit int) (Page[models.Post], error) {
	scope, err := policy.ListScope(caller)
	if err != nil {
		return Page[models.Post]{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Page[models.Post]{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, text, scope, offset, limit)
		if err == nil {
			items, err := s.Repo.FindPostsByIDs(ctx, ids, scope)
			if err != nil {
				return Page[models.Post]{}, err
			}
			return Page[models.Post]{Total: total, Items: items}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchPosts(ctx, text, scope, offset, limit)
	if err != nil {
		return Page[models.Post]{}, err
	}
	return Page[models.Post]{Total: total, Items: items}, nil
}

func (s *PostService) reindex(ctx context.Context, p *models.Post) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexPost(ctx, *p); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "post_id", p.ID, "error", err)
	}
}
