package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/gin-gonic/gin"
	"github.com/papertrade/trading-service/internal/config"
	httphandler "github.com/papertrade/trading-service/internal/handler/http"
	"github.com/papertrade/trading-service/internal/quotes"
	"github.com/papertrade/trading-service/internal/repository"
	"github.com/papertrade/trading-service/internal/service"
	"github.com/papertrade/trading-service/storage/postgres"
	"github.com/papertrade/trading-service/storage/redis"
)

type App struct {
	cfg        *config.Config
	log        *slog.Logger
	httpServer *http.Server
	storage    *postgres.Storage
	redis      *goredis.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgres.New(cfg.Database)
	if err != nil {
		panic(fmt.Errorf("failed to init storage: %w", err))
	}

	startingCash, err := decimal.NewFromString(cfg.Trading.StartingCash)
	if err != nil {
		panic(fmt.Errorf("invalid STARTING_CASH value %q: %w", cfg.Trading.StartingCash, err))
	}

	var gateway quotes.Gateway = quotes.NewAlphaVantage(cfg.Quotes, log)

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.New(cfg.Redis)
		if err != nil {
			panic(fmt.Errorf("failed to init redis: %w", err))
		}
		gateway = quotes.NewCache(gateway, redisClient, cfg.Quotes.CacheTTL, log)
	}

	usersRepo := repository.NewUsersRepository(storage.DB)
	transactionsRepo := repository.NewTransactionsRepository(storage.DB)

	authService := service.NewAuthService(usersRepo, startingCash, cfg.Security)
	tradeService := service.NewTradeService(storage.DB, gateway, log)
	portfolioService := service.NewPortfolioService(usersRepo, transactionsRepo, gateway)

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	handler := httphandler.NewHandler(authService, tradeService, portfolioService, gateway, log, cfg.Security.JWTSecret)
	handler.RegisterRoutes(ginEngine)

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", strconv.FormatUint(uint64(cfg.HTTP.Port), 10)),
		Handler: ginEngine,
	}

	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		storage:    storage,
		redis:      redisClient,
	}
}

func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("HTTP server is running", "addr", a.httpServer.Addr)

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop() {
	a.log.Info("stopping application components gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.HTTP.Timeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("failed to gracefully shutdown HTTP server", "error", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", "error", err)
		}
	}

	if err := a.storage.Stop(); err != nil {
		a.log.Error("failed to stop storage", "error", err)
	} else {
		a.log.Info("database connection closed")
	}
}
