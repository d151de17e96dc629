package repository

import (
	"context"

	"gorm.io/gorm"

	"microblog/internal/domain"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	tx := r.db.WithContext(ctx).Where("name = ?", name).First(&role)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &role, nil
}

// EnsureByName creates the role if it does not exist yet. Roles are a fixed
// set, inserted once at seed time and never mutated.
func (r *RoleRepository) EnsureByName(ctx context.Context, name string) (*domain.Role, error) {
	role := domain.Role{Name: name}
	tx := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &role, nil
}
