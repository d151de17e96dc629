package seed

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"microblog/internal/domain"
	"microblog/internal/repository"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Run provisions the fixed role set and the default admin/guest accounts.
// It is idempotent: existing roles and users are left untouched. Generated
// passwords are logged once so the operator can perform the first login.
func Run(ctx context.Context, users *repository.UserRepository, roles *repository.RoleRepository, adminUsername, guestUsername string) error {
	adminRole, err := roles.EnsureByName(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}
	guestRole, err := roles.EnsureByName(ctx, domain.RoleGuest)
	if err != nil {
		return fmt.Errorf("seed guest role: %w", err)
	}

	if err := ensureUser(ctx, users, adminUsername, *adminRole); err != nil {
		return err
	}
	return ensureUser(ctx, users, guestUsername, *guestRole)
}

func ensureUser(ctx context.Context, users *repository.UserRepository, username string, role domain.Role) error {
	exists, err := users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	if exists {
		return nil
	}

	password, err := randomPassword(12)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        []domain.Role{role},
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}

	log.Println("************************************************************")
	log.Printf("** Created %s account %q", role.Name, username)
	log.Printf("** Generated password: %s", password)
	log.Println("** Use it for the first login and change it.")
	log.Println("************************************************************")

	return nil
}

func randomPassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
