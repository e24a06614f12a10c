package quotes

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Gateway looks up live quotes. Lookups hit the network and may be slow;
// callers must pass a context and must not hold locks across a call.
// Unknown tickers yield errs.ErrUnknownSymbol, transport or rate-limit
// failures yield errs.ErrQuoteUnavailable.
type Gateway interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
