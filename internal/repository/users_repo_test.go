package repository_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func TestCreateUser(t *testing.T) {
	testDB := setupTestDB(t)
	usersRepo := repository.NewUsersRepository(testDB)

	t.Run("success_create_user", func(t *testing.T) {
		user := &models.User{
			Username:     "create_user",
			PasswordHash: "hash",
			Cash:         decimal.RequireFromString("10000.00"),
		}

		if err := usersRepo.CreateUser(user); err != nil {
			t.Errorf("CreateUser failed: unexpected error: %v", err)
		}

		foundUser, err := usersRepo.GetUserByUsername("create_user")
		if err != nil {
			t.Errorf("GetUserByUsername failed after create: %v", err)
		}

		if !foundUser.Cash.Equal(decimal.RequireFromString("10000.00")) {
			t.Errorf("Expected starting cash 10000.00, got %s", foundUser.Cash)
		}
	})

	t.Run("duplicate_username", func(t *testing.T) {
		user := &models.User{
			Username:     "duplicate_user",
			PasswordHash: "hash",
		}

		if err := usersRepo.CreateUser(user); err != nil {
			t.Fatalf("first CreateUser failed: %v", err)
		}

		err := usersRepo.CreateUser(&models.User{
			Username:     "duplicate_user",
			PasswordHash: "other-hash",
		})

		if err == nil {
			t.Fatalf("Expected an error for duplicated user creation, but got nil")
		}

		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, but got %v", err)
		}
	})

	t.Run("username_not_found", func(t *testing.T) {
		_, err := usersRepo.GetUserByUsername("no_such_user")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, but got %v", err)
		}
	})
}

func TestUpdateCash(t *testing.T) {
	testDB := setupTestDB(t)
	usersRepo := repository.NewUsersRepository(testDB)

	t.Run("success_update_cash", func(t *testing.T) {
		user := &models.User{
			Username:     "cash_user",
			PasswordHash: "hash",
			Cash:         decimal.RequireFromString("10000.00"),
		}
		if err := usersRepo.CreateUser(user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		newBalance := decimal.RequireFromString("9250.00")
		if err := usersRepo.UpdateCash(user.ID, newBalance); err != nil {
			t.Fatalf("UpdateCash failed: %v", err)
		}

		foundUser, err := usersRepo.GetUserByID(user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}

		if !foundUser.Cash.Equal(newBalance) {
			t.Errorf("Expected cash %s, got %s", newBalance, foundUser.Cash)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		err := usersRepo.UpdateCash(uuid.New(), decimal.RequireFromString("1.00"))
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, but got %v", err)
		}
	})
}
