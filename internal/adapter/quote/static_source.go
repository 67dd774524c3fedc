package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// StaticQuote is one configured entry of a StaticSource
type StaticQuote struct {
	Symbol string
	Name   string
	Price  string // decimal string
}

// StaticSource serves quotes from a fixed table. Used for offline runs and
// tests; prices can be moved with Set.
type StaticSource struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

// NewStaticSource builds a source from entries
func NewStaticSource(entries []StaticQuote) (*StaticSource, error) {
	s := &StaticSource{quotes: make(map[string]domain.Quote, len(entries))}
	for _, entry := range entries {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for %s: %w", entry.Price, entry.Symbol, err)
		}
		if err := s.Set(entry.Symbol, entry.Name, price); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Set adds or replaces the quote for symbol
func (s *StaticSource) Set(symbol, name string, price decimal.Decimal) error {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("static quote symbol is required")
	}
	if !price.IsPositive() {
		return fmt.Errorf("static quote %s must have a positive price, got %s", symbol, price)
	}
	if name == "" {
		name = symbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = domain.Quote{Symbol: symbol, Name: name, Price: price}
	return nil
}

// Lookup returns the configured quote for symbol
func (s *StaticSource) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuoteUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[domain.NormalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	return &quote, nil
}
