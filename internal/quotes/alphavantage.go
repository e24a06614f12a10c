package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/papertrade/trading-service/internal/config"
	"github.com/papertrade/trading-service/lib/errs"
	"github.com/shopspring/decimal"
)

// AlphaVantage fetches quotes from the Alpha Vantage GLOBAL_QUOTE endpoint
// and resolves company names through SYMBOL_SEARCH.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	cli     *http.Client
	log     *slog.Logger
}

func NewAlphaVantage(cfg config.QuotesConfig, log *slog.Logger) *AlphaVantage {
	return &AlphaVantage{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		cli:     &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

func (p *AlphaVantage) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errs.ErrUnknownSymbol
	}

	price, err := p.fetchPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	name, err := p.fetchName(ctx, symbol)
	if err != nil {
		// The name is cosmetic; a price without a name is still a usable quote.
		p.log.Warn("symbol name lookup failed, falling back to ticker", "symbol", symbol, "error", err)
		name = symbol
	}

	return &Quote{Symbol: symbol, Name: name, Price: price}, nil
}

func (p *AlphaVantage) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var raw struct {
		GlobalQuote map[string]string `json:"Global Quote"`
		Note        string            `json:"Note"`
		Information string            `json:"Information"`
	}

	if err := p.get(ctx, "GLOBAL_QUOTE", symbol, &raw); err != nil {
		return decimal.Zero, err
	}

	if raw.Note != "" || raw.Information != "" {
		return decimal.Zero, fmt.Errorf("%w: rate limited", errs.ErrQuoteUnavailable)
	}

	priceStr, ok := raw.GlobalQuote["05. price"]
	if !ok || priceStr == "" {
		return decimal.Zero, errs.ErrUnknownSymbol
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil || price.IsNegative() || price.IsZero() {
		return decimal.Zero, errs.ErrUnknownSymbol
	}

	return price, nil
}

func (p *AlphaVantage) fetchName(ctx context.Context, symbol string) (string, error) {
	var raw struct {
		BestMatches []struct {
			Symbol string `json:"1. symbol"`
			Name   string `json:"2. name"`
		} `json:"bestMatches"`
	}

	if err := p.get(ctx, "SYMBOL_SEARCH", symbol, &raw); err != nil {
		return "", err
	}

	for _, match := range raw.BestMatches {
		if strings.EqualFold(match.Symbol, symbol) {
			return match.Name, nil
		}
	}
	if len(raw.BestMatches) > 0 {
		return raw.BestMatches[0].Name, nil
	}

	return symbol, nil
}

func (p *AlphaVantage) get(ctx context.Context, function, symbol string, out any) error {
	params := url.Values{}
	params.Set("function", function)
	params.Set("apikey", p.apiKey)
	if function == "SYMBOL_SEARCH" {
		params.Set("keywords", symbol)
	} else {
		params.Set("symbol", symbol)
	}

	reqURL := fmt.Sprintf("%s/query?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrQuoteUnavailable, err.Error())
	}
	req.Header.Set("User-Agent", "trading-service/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrQuoteUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: upstream returned http %d", errs.ErrQuoteUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrQuoteUnavailable, err.Error())
	}

	return nil
}
