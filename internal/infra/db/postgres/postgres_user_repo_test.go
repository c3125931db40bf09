//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	ctx := context.Background()

	t.Run("should perform full CRUD cycle", func(t *testing.T) {
		cleanup(t)

		// 1. Create a new user
		newUser, err := model.NewUser("", "Ann", "Lee", "ann@example.com", 25, "ru")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, newUser); err != nil {
			t.Fatalf("Failed to save new user: %v", err)
		}

		// 2. Read the user back by email, ignoring case
		found, err := repo.FindByEmail(ctx, nil, "ANN@example.com")
		if err != nil {
			t.Fatalf("Failed to find user by email: %v", err)
		}
		if found.ID != newUser.ID || found.Country != "RU" || found.Age != 25 {
			t.Errorf("unexpected user: %+v", found)
		}

		// 3. Update and read back by ID
		found.Age = 26
		if err := repo.Save(ctx, nil, found); err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}
		updated, err := repo.FindByID(ctx, nil, found.ID)
		if err != nil {
			t.Fatalf("Failed to find user by ID: %v", err)
		}
		if updated.Age != 26 {
			t.Errorf("Expected age 26, got %d", updated.Age)
		}
	})

	t.Run("should return ErrNotFound for unknown users", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		cleanup(t)
		u1, _ := model.NewUser("", "Ann", "Lee", "dup@example.com", 25, "RU")
		u2, _ := model.NewUser("", "Bob", "Ray", "dup@example.com", 30, "FR")
		if err := repo.Save(ctx, nil, u1); err != nil {
			t.Fatalf("save u1: %v", err)
		}
		if err := repo.Save(ctx, nil, u2); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestCompanyRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	cleanup(t)

	repo := NewPostgresCompanyRepo(testPool)
	ctx := context.Background()

	c, _ := model.NewCompany("", "Acme Inc", "hq@acme.io")
	if err := repo.Save(ctx, nil, c); err != nil {
		t.Fatalf("Failed to save company: %v", err)
	}
	found, err := repo.FindByID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Acme Inc" {
		t.Errorf("unexpected company: %+v", found)
	}
}
