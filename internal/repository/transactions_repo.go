package repository

import (
	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is the aggregated position for one symbol. LastPrice is the price
// of some past ledger row, kept only as a fallback label; valuation always
// uses a live quote.
type Holding struct {
	Symbol    string          `json:"symbol"`
	StockName string          `json:"stock_name"`
	NetShares int64           `json:"net_shares"`
	LastPrice decimal.Decimal `json:"last_price"`
}

type TransactionsRepository interface {
	Record(transaction *models.Transaction) error
	HoldingsFor(userID uuid.UUID) ([]Holding, error)
	HistoryFor(userID uuid.UUID) ([]models.Transaction, error)
	NetSharesFor(userID uuid.UUID, symbol string) (int64, error)
}

type transactionsRepository struct {
	db *gorm.DB
}

func NewTransactionsRepository(db *gorm.DB) TransactionsRepository {
	return &transactionsRepository{db: db}
}

func (db *transactionsRepository) Record(transaction *models.Transaction) error {
	return db.db.Create(transaction).Error
}

// HoldingsFor groups the ledger by symbol and sums signed shares. Symbols
// whose net share count reached zero are filtered out here.
func (db *transactionsRepository) HoldingsFor(userID uuid.UUID) ([]Holding, error) {
	var holdings []Holding

	err := db.db.Model(&models.Transaction{}).
		Select("symbol, max(stock_name) as stock_name, sum(shares) as net_shares, max(price) as last_price").
		Where("user_id = ?", userID).
		Group("symbol").
		Having("sum(shares) <> 0").
		Order("symbol asc").
		Scan(&holdings).Error
	if err != nil {
		return nil, err
	}

	return holdings, nil
}

func (db *transactionsRepository) HistoryFor(userID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction

	err := db.db.Where("user_id = ?", userID).
		Order("id asc").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (db *transactionsRepository) NetSharesFor(userID uuid.UUID, symbol string) (int64, error) {
	var net int64

	err := db.db.Model(&models.Transaction{}).
		Select("coalesce(sum(shares), 0)").
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Scan(&net).Error
	if err != nil {
		return 0, err
	}

	return net, nil
}
