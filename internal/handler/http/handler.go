package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/papertrade/trading-service/internal/handler/middleware"
	"github.com/papertrade/trading-service/internal/quotes"
	"github.com/papertrade/trading-service/internal/service"
	"github.com/papertrade/trading-service/lib/errs"
)

type Handler struct {
	authService      service.AuthService
	tradeService     service.TradeService
	portfolioService service.PortfolioService
	quotes           quotes.Gateway
	log              *slog.Logger
	jwtSecret        string
}

func NewHandler(
	authService service.AuthService,
	tradeService service.TradeService,
	portfolioService service.PortfolioService,
	gateway quotes.Gateway,
	log *slog.Logger,
	jwtSecret string,
) *Handler {
	return &Handler{
		authService:      authService,
		tradeService:     tradeService,
		portfolioService: portfolioService,
		quotes:           gateway,
		log:              log,
		jwtSecret:        jwtSecret,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
		}

		authed := api.Group("", middleware.AuthMiddleware(h.jwtSecret, h.log))
		{
			authed.GET("/quote/:symbol", h.quote)
			authed.POST("/trade/buy", h.buy)
			authed.POST("/trade/sell", h.sell)
			authed.GET("/portfolio", h.portfolio)
			authed.GET("/portfolio/symbols", h.ownedSymbols)
			authed.GET("/history", h.history)
		}
	}
}

type registerRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	accessToken, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func (h *Handler) quote(c *gin.Context) {
	quote, err := h.quotes.Lookup(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

type tradeRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Shares int64  `json:"shares" binding:"required,min=1"`
}

func (h *Handler) buy(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and a positive integer share count are required"})
		return
	}

	executed, err := h.tradeService.Buy(c.Request.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, executed)
}

func (h *Handler) sell(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and a positive integer share count are required"})
		return
	}

	executed, err := h.tradeService.Sell(c.Request.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, executed)
}

func (h *Handler) portfolio(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	view, err := h.portfolioService.Portfolio(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) ownedSymbols(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	symbols, err := h.portfolioService.OwnedSymbols(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (h *Handler) history(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	transactions, err := h.portfolioService.History(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *Handler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDRaw, ok := c.Get(middleware.UserCtx)
	if !ok {
		h.log.Error("handler: userID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDRaw.(string))
	if err != nil {
		h.log.Error("handler: failed to parse userID from context", "userID", userIDRaw)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id in token"})
		return uuid.Nil, false
	}

	return userID, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrPasswordMismatch),
		errors.Is(err, errs.ErrUnknownSymbol):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
	case errors.Is(err, errs.ErrInsufficientFunds),
		errors.Is(err, errs.ErrInsufficientShares):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrQuoteUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error("unexpected error", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
