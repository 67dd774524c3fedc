package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// DefaultMaxConcurrentLookups bounds parallel quote lookups per summary
const DefaultMaxConcurrentLookups = 4

// Position is one holding marked to the current market price
type Position struct {
	Symbol    string
	Name      string
	Shares    int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// PortfolioView represents the valued portfolio of a user
type PortfolioView struct {
	Cash          decimal.Decimal
	Holdings      []Position // ordered by symbol
	HoldingsValue decimal.Decimal
	NetWorth      decimal.Decimal
}

// ValuationService computes net worth from stored holdings and fresh quotes
type ValuationService struct {
	UserRepo    domain.UserRepository
	LedgerStore domain.LedgerStore
	QuoteSource domain.QuoteSource

	maxConcurrent int
	logger        *slog.Logger
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	userRepo domain.UserRepository,
	ledgerStore domain.LedgerStore,
	quoteSource domain.QuoteSource,
	maxConcurrent int,
	logger *slog.Logger,
) *ValuationService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLookups
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValuationService{
		UserRepo:      userRepo,
		LedgerStore:   ledgerStore,
		QuoteSource:   quoteSource,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Summarize values the user's portfolio at current quotes
// Logic:
//   - Cash: the stored balance (read without locking the ledger)
//   - Holdings: every stored holding, priced with a fresh quote
//   - NetWorth: Cash + Σ(unit price × shares)
//
// If any lookup fails the whole summary fails with ErrQuoteUnavailable.
func (s *ValuationService) Summarize(ctx context.Context, userID uuid.UUID) (*PortfolioView, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.LedgerStore.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	quotes, err := s.lookupAll(ctx, holdings)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Cash:          user.Cash,
		Holdings:      make([]Position, 0, len(holdings)),
		HoldingsValue: decimal.Zero,
	}
	for i, holding := range holdings {
		quote := quotes[i]
		lineTotal := quote.Price.Mul(decimal.NewFromInt(holding.Shares))
		view.Holdings = append(view.Holdings, Position{
			Symbol:    holding.Symbol,
			Name:      quote.Name,
			Shares:    holding.Shares,
			UnitPrice: quote.Price,
			LineTotal: lineTotal,
		})
		view.HoldingsValue = view.HoldingsValue.Add(lineTotal)
	}
	view.NetWorth = view.Cash.Add(view.HoldingsValue)

	return view, nil
}

// lookupAll fetches one quote per holding with bounded concurrency.
// The first failure cancels the remaining lookups.
func (s *ValuationService) lookupAll(ctx context.Context, holdings []*domain.Holding) ([]*domain.Quote, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quotes := make([]*domain.Quote, len(holdings))
	sem := make(chan struct{}, s.maxConcurrent)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i, holding := range holdings {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			quote, err := domain.LookupQuote(ctx, s.QuoteSource, symbol)
			if err != nil {
				once.Do(func() {
					firstErr = fmt.Errorf("%w: cannot value %s: %v", domain.ErrQuoteUnavailable, symbol, err)
					cancel()
				})
				return
			}
			quotes[i] = quote
		}(i, holding.Symbol)
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Warn("portfolio valuation failed", slog.Any("error", firstErr))
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuoteUnavailable, err)
	}
	return quotes, nil
}
