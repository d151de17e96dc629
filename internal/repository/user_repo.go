package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"microblog/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Username = strings.TrimSpace(u.Username)
	return r.db.WithContext(ctx).Create(u).Error
}

// GetByUsername loads a user together with the assigned roles.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).
		Preload("Roles").
		Where("username = ?", strings.TrimSpace(username)).
		First(&u)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count)
	return count > 0, tx.Error
}
