package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/quotes"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestUser(t *testing.T, db *gorm.DB, username, cash string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "hash",
		Cash:         decimal.RequireFromString(cash),
	}
	if err := repository.NewUsersRepository(db).CreateUser(user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// fakeGateway serves quotes from a fixed table and counts lookups.
type fakeGateway struct {
	mu     sync.Mutex
	prices map[string]quotes.Quote
	err    error
	calls  int
}

func (f *fakeGateway) Lookup(_ context.Context, symbol string) (*quotes.Quote, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	quote, ok := f.prices[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, errs.ErrUnknownSymbol
	}

	result := quote
	return &result, nil
}

func (f *fakeGateway) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
