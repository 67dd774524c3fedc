package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is a price snapshot for one symbol, valid at lookup time only.
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// NormalizeSymbol upper-cases a ticker and strips surrounding whitespace.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// LookupQuote resolves symbol through src and guarantees the result is usable
// for pricing: every failure wraps ErrUnknownSymbol or ErrQuoteUnavailable,
// the price is positive and the symbol is normalized.
func LookupQuote(ctx context.Context, src QuoteSource, symbol string) (*Quote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrUnknownSymbol)
	}

	quote, err := src.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, ErrUnknownSymbol) || errors.Is(err, ErrQuoteUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrQuoteUnavailable, symbol, err)
	}
	if quote == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if !quote.Price.IsPositive() {
		return nil, fmt.Errorf("%w: %s has non-positive price %s", ErrQuoteUnavailable, symbol, quote.Price)
	}

	normalized := *quote
	normalized.Symbol = NormalizeSymbol(quote.Symbol)
	if normalized.Symbol == "" {
		normalized.Symbol = symbol
	}
	return &normalized, nil
}
