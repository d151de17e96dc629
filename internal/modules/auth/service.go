package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"microblog/internal/domain"
)

type tokenIssuer interface {
	GenerateToken(username string) (string, error)
}

// Service contains the signup/signin business logic.
type Service struct {
	users UserRepository
	roles RoleRepository
	jwt   tokenIssuer
}

func NewService(users UserRepository, roles RoleRepository, jwt tokenIssuer) *Service {
	return &Service{users: users, roles: roles, jwt: jwt}
}

// Signup registers a new account. Unknown role names are rejected; an empty
// role list defaults to guest. The password is stored as a bcrypt hash only.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	roleNames := req.Roles
	if len(roleNames) == 0 {
		roleNames = []string{domain.RoleGuest}
	}

	roles := make([]domain.Role, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, err
		}
		roles = append(roles, *role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Signin verifies the credentials and issues a bearer token. Unknown user
// and wrong password collapse to the same error.
func (s *Service) Signin(ctx context.Context, req SigninRequest) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		Token:    token,
		Type:     "Bearer",
		Username: user.Username,
		Roles:    user.RoleNames(),
	}, nil
}
