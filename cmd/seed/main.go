package main

import (
	"context"
	"log"

	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/config"
	"asset-system/pkg/database/postgresql"
	"asset-system/pkg/utils"
)

// Seeds a head-office branch plus an admin and a technician account so a
// fresh install can log in straight away.
func main() {
	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	ctx := context.Background()
	branchRepo := repositories.NewBranchRepository(dbPool)
	userRepo := repositories.NewUserRepository(dbPool)

	branchID, err := branchRepo.CreateBranch(ctx, entities.Branch{
		Name:      "Head Office",
		ShortName: "HQ",
	})
	if err != nil {
		log.Fatalf("failed to seed branch: %v", err)
	}
	log.Printf("seeded branch %d", branchID)

	seedUser(ctx, userRepo, "Administrator", "admin@example.com", "admin123", entities.RoleAdmin, branchID)
	seedUser(ctx, userRepo, "Technician", "technician@example.com", "tech123", entities.RoleTechnician, branchID)

	log.Println("seeding complete")
}

func seedUser(ctx context.Context, repo repositories.UserRepositoryInterface, fullName, email, password, role string, branchID uint64) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password for %s: %v", email, err)
	}
	id, err := repo.CreateUser(ctx, entities.User{
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     role,
		BranchID: branchID,
	})
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	log.Printf("seeded %s user %d (%s)", role, id, email)
}
