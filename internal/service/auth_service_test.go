package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/papertrade/trading-service/internal/config"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/internal/service"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
)

func newAuthService(t *testing.T) service.AuthService {
	t.Helper()

	testDB := setupTestDB(t)
	usersRepo := repository.NewUsersRepository(testDB)

	return service.NewAuthService(usersRepo, decimal.RequireFromString("10000.00"), config.SecConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
}

func TestRegister(t *testing.T) {
	auth := newAuthService(t)

	t.Run("success_with_starting_cash", func(t *testing.T) {
		user, err := auth.Register(context.Background(), "alice", "s3cret", "s3cret")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if !user.Cash.Equal(decimal.RequireFromString("10000.00")) {
			t.Errorf("Expected starting cash 10000.00, got %s", user.Cash)
		}
		if user.PasswordHash == "s3cret" {
			t.Errorf("Password stored in plaintext")
		}
	})

	t.Run("duplicate_username", func(t *testing.T) {
		_, err := auth.Register(context.Background(), "alice", "other", "other")
		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("password_mismatch", func(t *testing.T) {
		_, err := auth.Register(context.Background(), "bob", "one", "two")
		if !errors.Is(err, errs.ErrPasswordMismatch) {
			t.Errorf("Expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("empty_fields", func(t *testing.T) {
		_, err := auth.Register(context.Background(), "", "pw", "pw")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for empty username, got %v", err)
		}

		_, err = auth.Register(context.Background(), "carol", "", "")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for empty password, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	auth := newAuthService(t)

	if _, err := auth.Register(context.Background(), "login_user", "s3cret", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("success_returns_signed_token", func(t *testing.T) {
		tokenString, err := auth.Login(context.Background(), "login_user", "s3cret")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("Expected a valid token, got error %v", err)
		}

		claims := token.Claims.(jwt.MapClaims)
		if claims["name"] != "login_user" {
			t.Errorf("Expected name claim login_user, got %v", claims["name"])
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := auth.Login(context.Background(), "login_user", "wrong")
		if !errors.Is(err, errs.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown_username_same_error", func(t *testing.T) {
		_, err := auth.Login(context.Background(), "no_such_user", "s3cret")
		if !errors.Is(err, errs.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}
