package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/blog/internal/models"
)

func (r *GormRepo) CreatePost(ctx context.Context, p *models.Post) error {
	return translate(r.DB.WithContext(ctx).Omit("Owner").Create(p).Error, "create post")
}

func (r *GormRepo) FindPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "find post by id")
	}
	return &post, nil
}

func (r *GormRepo) UpdatePost(ctx context.Context, p *models.Post) error {
	res := r.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", p.ID).
		Updates(map[string]any{"title": p.Title, "content": p.Content, "user_id": p.UserID})
	if res.Error != nil {
		return translate(res.Error, "update post")
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindPostByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepo) DeletePost(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete post")
	}
	return nil
}

func scopeOwner(q *gorm.DB, owner *uint) *gorm.DB {
	if owner != nil {
		return q.Where("user_id = ?", *owner)
	}
	return q
}

func (r *GormRepo) ListPosts(ctx context.Context, owner *uint, offset, limit int) (int64, []models.Post, error) {
	q := scopeOwner(r.DB.WithContext(ctx).Model(&models.Post{}), owner)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, translate(err, "count posts")
	}

	items := make([]models.Post, 0, limit)
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err, "list posts")
	}
	return total, items, nil
}

// SearchPosts is the database fallback used when no search index is configured.
func (r *GormRepo) SearchPosts(ctx context.Context, text string, owner *uint, offset, limit int) (int64, []models.Post, error) {
	like := "%" + escapeLike(strings.ToLower(text)) + "%"
	q := scopeOwner(r.DB.WithContext(ctx).Model(&models.Post{}), owner).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, like, like)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, translate(err, "count post matches")
	}

	items := make([]models.Post, 0, limit)
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err, "search posts")
	}
	return total, items, nil
}

// FindPostsByIDs keeps the order of ids and drops the ones outside owner's scope.
func (r *GormRepo) FindPostsByIDs(ctx context.Context, ids []uint, owner *uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	var found []models.Post
	q := scopeOwner(r.DB.WithContext(ctx).Model(&models.Post{}), owner).Where("id IN ?", ids)
	if err := q.Find(&found).Error; err != nil {
		return nil, translate(err, "find posts by ids")
	}

	byID := make(map[uint]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
