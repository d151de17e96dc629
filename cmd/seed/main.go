// Standalone dev seeding tool: provisions roles and default accounts, then
// loads a handful of demo posts so the API has content to serve locally.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/domain"
	"microblog/internal/repository"
	"microblog/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	postRepo := repository.NewPostRepository(db)

	if err := seed.Run(ctx, userRepo, roleRepo, cfg.AdminUsername, cfg.GuestUsername); err != nil {
		log.Fatal("seed failed:", err)
	}

	// Demo author with a known password for local testing
	log.Println("Creating demo author...")
	guestRole, err := roleRepo.GetByName(ctx, domain.RoleGuest)
	if err != nil {
		log.Fatal(err)
	}

	author := &domain.User{Username: "alice"}
	if existing, err := userRepo.GetByUsername(ctx, author.Username); err == nil {
		author = existing
	} else {
		hash, _ := bcrypt.GenerateFromPassword([]byte("alice123"), bcrypt.DefaultCost)
		author.PasswordHash = string(hash)
		author.Roles = []domain.Role{*guestRole}
		if err := userRepo.Create(ctx, author); err != nil {
			log.Fatal("create demo author:", err)
		}
		log.Println("Demo author created: alice / alice123")
	}

	log.Println("Creating demo posts...")
	tags := []string{"travel,food", "travel", "food,photo", "photo", "music"}
	for i, t := range tags {
		p := &domain.Post{
			Title:       fmt.Sprintf("Demo post %d", i+1),
			Description: "Seeded content for local development",
			Hashtags:    t,
			UserID:      author.ID,
			CreatedAt:   time.Now().Add(-time.Duration(len(tags)-i) * time.Hour),
		}
		if err := postRepo.Create(ctx, p); err != nil {
			log.Fatal("create demo post:", err)
		}
	}

	log.Println("Seed completed.")
}
