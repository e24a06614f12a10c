package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UsersRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(userID uuid.UUID) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	UpdateCash(userID uuid.UUID, newBalance decimal.Decimal) error
}

type usersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) UsersRepository {
	return &usersRepository{db: db}
}

func (db *usersRepository) CreateUser(user *models.User) error {
	if err := db.db.Create(user).Error; err != nil {
		errorString := err.Error()
		if strings.Contains(errorString, "UNIQUE constraint failed") || strings.Contains(errorString, "duplicate key value violates unique constraint") {
			return errs.ErrAlreadyExists
		}

		return err
	}

	return nil
}

func (db *usersRepository) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}

		return nil, err
	}
	return &user, nil
}

func (db *usersRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := db.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}

		return nil, err
	}
	return &user, nil
}

// UpdateCash writes the balance unconditionally. The trade service is
// responsible for computing the new value under its own serialization.
func (db *usersRepository) UpdateCash(userID uuid.UUID, newBalance decimal.Decimal) error {
	result := db.db.Model(&models.User{}).Where("id = ?", userID).Update("cash", newBalance)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	return nil
}
