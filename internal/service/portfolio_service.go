package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/quotes"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
)

type PortfolioEntry struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

type PortfolioView struct {
	Holdings   []PortfolioEntry `json:"holdings"`
	Cash       decimal.Decimal  `json:"cash"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
}

type PortfolioService interface {
	Portfolio(ctx context.Context, userID uuid.UUID) (*PortfolioView, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	OwnedSymbols(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type portfolioService struct {
	usersRepo        repository.UsersRepository
	transactionsRepo repository.TransactionsRepository
	quotes           quotes.Gateway
}

func NewPortfolioService(usersRepo repository.UsersRepository, transactionsRepo repository.TransactionsRepository, gateway quotes.Gateway) PortfolioService {
	return &portfolioService{
		usersRepo:        usersRepo,
		transactionsRepo: transactionsRepo,
		quotes:           gateway,
	}
}

// Portfolio values every held position at a fresh quote; the price stored in
// the ledger is historical and never used for valuation. If any quote lookup
// fails the whole view fails, so a stale or partial portfolio is never shown.
func (s *portfolioService) Portfolio(ctx context.Context, userID uuid.UUID) (*PortfolioView, error) {
	user, err := s.usersRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.transactionsRepo.HoldingsFor(userID)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Holdings:   make([]PortfolioEntry, 0, len(holdings)),
		Cash:       user.Cash,
		GrandTotal: user.Cash,
	}

	for _, holding := range holdings {
		quote, err := s.quotes.Lookup(ctx, holding.Symbol)
		if err != nil {
			// A held symbol the provider no longer knows is still a provider
			// failure from the user's point of view.
			return nil, fmt.Errorf("%w: %s", errs.ErrQuoteUnavailable, holding.Symbol)
		}

		name := quote.Name
		if name == "" {
			name = holding.StockName
		}

		value := quote.Price.Mul(decimal.NewFromInt(holding.NetShares))
		view.Holdings = append(view.Holdings, PortfolioEntry{
			Symbol: holding.Symbol,
			Name:   name,
			Shares: holding.NetShares,
			Price:  quote.Price,
			Value:  value,
		})
		view.GrandTotal = view.GrandTotal.Add(value)
	}

	return view, nil
}

func (s *portfolioService) History(_ context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.transactionsRepo.HistoryFor(userID)
}

// OwnedSymbols lists symbols with a nonzero position, used to populate the
// sell form.
func (s *portfolioService) OwnedSymbols(_ context.Context, userID uuid.UUID) ([]string, error) {
	holdings, err := s.transactionsRepo.HoldingsFor(userID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}

	return symbols, nil
}
