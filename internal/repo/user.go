package repo

import (
	"context"

	"github.com/Skotchmaster/blog/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error, "create user")
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "find user by id")
	}
	return &user, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user by email")
	}
	return &user, nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).Order("id ASC").First(&user).Error; err != nil {
		return nil, translate(err, "find user by username")
	}
	return &user, nil
}

// FindUserBySubject resolves the pair carried in a session token.
func (r *GormRepo) FindUserBySubject(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("username = ? AND email = ?", username, email).
		First(&user).Error; err != nil {
		return nil, translate(err, "find user by subject")
	}
	return &user, nil
}

// FindLoginCandidates returns every account whose email or username equals login.
// Usernames are not necessarily unique, so there may be several.
func (r *GormRepo) FindLoginCandidates(ctx context.Context, login string) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ? OR username = ?", login, login).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, translate(err, "find login candidates")
	}
	return users, nil
}

func (r *GormRepo) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error; err != nil {
		return false, translate(err, "count usernames")
	}
	return count > 0, nil
}

// ListUsers returns every user when only is nil, otherwise just that one.
func (r *GormRepo) ListUsers(ctx context.Context, only *uint, offset, limit int) (int64, []models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if only != nil {
		q = q.Where("id = ?", *only)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, translate(err, "count users")
	}

	items := make([]models.User, 0, limit)
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err, "list users")
	}
	return total, items, nil
}

func (r *GormRepo) UpdateUsername(ctx context.Context, id uint, username string) (*models.User, error) {
	return r.updateUserColumn(ctx, id, "username", username)
}

func (r *GormRepo) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	return r.updateUserColumn(ctx, id, "role", role)
}

func (r *GormRepo) updateUserColumn(ctx context.Context, id uint, column string, value any) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return nil, translate(res.Error, "update user "+column)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindUserByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.FindUserByID(ctx, id)
}

func (r *GormRepo) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, "count user")
	}
	return count > 0, nil
}
