package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionBought TransactionType = "bought"
	TransactionSold   TransactionType = "sold"
)

type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;" json:"id"`
	Username     string          `gorm:"unique;not null" json:"username"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Cash         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"cash"`
	Transactions []Transaction   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

// Transaction is one ledger row. Rows are append-only: holdings and history
// are derived by aggregation, never by rewriting past rows.
type Transaction struct {
	gorm.Model

	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Symbol    string          `gorm:"not null;index" json:"symbol"`
	StockName string          `gorm:"not null" json:"stock_name"`
	Shares    int64           `gorm:"not null" json:"shares"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Type      TransactionType `gorm:"not null" json:"type"`
}
