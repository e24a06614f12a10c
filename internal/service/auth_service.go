package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/papertrade/trading-service/internal/config"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, password, confirmation string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	usersRepo    repository.UsersRepository
	startingCash decimal.Decimal
	security     config.SecConfig
}

func NewAuthService(usersRepo repository.UsersRepository, startingCash decimal.Decimal, security config.SecConfig) AuthService {
	return &authService{
		usersRepo:    usersRepo,
		startingCash: startingCash,
		security:     security,
	}
}

func (s *authService) Register(_ context.Context, username, password, confirmation string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errs.ErrInvalidInput
	}
	if password != confirmation {
		return nil, errs.ErrPasswordMismatch
	}

	_, err := s.usersRepo.GetUserByUsername(username)
	if err == nil {
		return nil, errs.ErrAlreadyExists
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Cash:         s.startingCash,
	}

	// CreateUser maps a unique-constraint violation to ErrAlreadyExists,
	// which also covers two registrations racing past the lookup above.
	if err := s.usersRepo.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credential and returns a signed access token. An
// unknown username and a wrong password both yield ErrInvalidCredentials so
// the response cannot be used to enumerate usernames.
func (s *authService) Login(_ context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errs.ErrInvalidInput
	}

	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errs.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.Username,
		"exp":  time.Now().Add(s.security.TokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.security.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}
