package auth

import (
	"context"

	"microblog/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}
