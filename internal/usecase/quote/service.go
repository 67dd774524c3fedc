package quote

import (
	"context"
	"log/slog"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// QuoteService looks up symbols for display
type QuoteService struct {
	QuoteSource domain.QuoteSource

	logger *slog.Logger
}

// NewQuoteService creates a new QuoteService instance
func NewQuoteService(quoteSource domain.QuoteSource, logger *slog.Logger) *QuoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteService{
		QuoteSource: quoteSource,
		logger:      logger,
	}
}

// Quote returns the current quote for symbol
// Returns ErrUnknownSymbol for an empty or unknown symbol and
// ErrQuoteUnavailable when the source cannot answer
func (s *QuoteService) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	quote, err := domain.LookupQuote(ctx, s.QuoteSource, symbol)
	if err != nil {
		s.logger.Debug("quote lookup failed", slog.String("symbol", symbol), slog.Any("error", err))
		return nil, err
	}
	return quote, nil
}
