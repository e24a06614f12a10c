package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/quotes"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TradeService interface {
	Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*models.Transaction, error)
	Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*models.Transaction, error)
}

type tradeService struct {
	db     *gorm.DB
	quotes quotes.Gateway
	log    *slog.Logger

	// locks serializes trades per user so two concurrent orders cannot both
	// read the same stale balance. The quote is always fetched before the
	// lock is taken; the lock covers only the balance+ledger mutation.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewTradeService(db *gorm.DB, gateway quotes.Gateway, log *slog.Logger) TradeService {
	return &tradeService{
		db:     db,
		quotes: gateway,
		log:    log,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *tradeService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *tradeService) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*models.Transaction, error) {
	if shares <= 0 {
		return nil, errs.ErrInvalidInput
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	total := quote.Price.Mul(decimal.NewFromInt(shares))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var executed *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUsersRepository(tx)
		txLedger := repository.NewTransactionsRepository(tx)

		user, err := txUsers.GetUserByID(userID)
		if err != nil {
			return err
		}

		if user.Cash.LessThan(total) {
			return errs.ErrInsufficientFunds
		}

		if err := txUsers.UpdateCash(userID, user.Cash.Sub(total)); err != nil {
			return err
		}

		row := &models.Transaction{
			UserID:    userID,
			Symbol:    quote.Symbol,
			StockName: quote.Name,
			Shares:    shares,
			Price:     quote.Price,
			Type:      models.TransactionBought,
		}
		if err := txLedger.Record(row); err != nil {
			return err
		}

		executed = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("buy executed",
		slog.String("user_id", userID.String()),
		slog.String("symbol", quote.Symbol),
		slog.Int64("shares", shares),
		slog.String("price", quote.Price.String()),
	)

	return executed, nil
}

func (s *tradeService) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*models.Transaction, error) {
	if shares <= 0 {
		return nil, errs.ErrInvalidInput
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	total := quote.Price.Mul(decimal.NewFromInt(shares))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var executed *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUsersRepository(tx)
		txLedger := repository.NewTransactionsRepository(tx)

		owned, err := txLedger.NetSharesFor(userID, quote.Symbol)
		if err != nil {
			return err
		}

		// Selling the entire position is fine; net shares bottom out at zero.
		if owned < shares {
			return errs.ErrInsufficientShares
		}

		user, err := txUsers.GetUserByID(userID)
		if err != nil {
			return err
		}

		if err := txUsers.UpdateCash(userID, user.Cash.Add(total)); err != nil {
			return err
		}

		row := &models.Transaction{
			UserID:    userID,
			Symbol:    quote.Symbol,
			StockName: quote.Name,
			Shares:    -shares,
			Price:     quote.Price,
			Type:      models.TransactionSold,
		}
		if err := txLedger.Record(row); err != nil {
			return err
		}

		executed = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sell executed",
		slog.String("user_id", userID.String()),
		slog.String("symbol", quote.Symbol),
		slog.Int64("shares", shares),
		slog.String("price", quote.Price.String()),
	)

	return executed, nil
}
