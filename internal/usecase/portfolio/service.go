package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/infra"
)

// Config tunes how storage conflicts are retried
type Config struct {
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultConfig returns the retry policy used when none is configured
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		RetryBaseDelay: 10 * time.Millisecond,
		RetryMaxDelay:  250 * time.Millisecond,
	}
}

// TradeResult is the outcome of an executed trade
type TradeResult struct {
	Transaction *domain.Transaction
	Cash        decimal.Decimal // cash after the trade
	Shares      int64           // holding in the traded symbol after the trade
}

// PortfolioService executes trades and deposits against a user's ledger
type PortfolioService struct {
	LedgerStore domain.LedgerStore
	QuoteSource domain.QuoteSource

	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(
	ledgerStore domain.LedgerStore,
	quoteSource domain.QuoteSource,
	config Config,
	logger *slog.Logger,
) *PortfolioService {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &PortfolioService{
		LedgerStore: ledgerStore,
		QuoteSource: quoteSource,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Buy purchases shares of symbol at the current quote
// Logic:
//  1. Reject non-positive quantities before touching anything
//  2. Look up the quote (outside of any ledger lock)
//  3. In one unit of work: check cash covers price × shares, debit it,
//     add the shares to the holding and append a PURCHASE transaction
func (s *PortfolioService) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error) {
	return s.trade(ctx, userID, symbol, shares, domain.TransactionTypePurchase)
}

// Sell sells shares of symbol at the current quote
// Logic:
//  1. Reject non-positive quantities before touching anything
//  2. Look up the quote (outside of any ledger lock)
//  3. In one unit of work: check the holding covers the shares, credit the
//     proceeds, remove the shares (deleting the holding at zero) and append
//     a SALE transaction
func (s *PortfolioService) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error) {
	return s.trade(ctx, userID, symbol, shares, domain.TransactionTypeSale)
}

func (s *PortfolioService) trade(
	ctx context.Context,
	userID uuid.UUID,
	symbol string,
	shares int64,
	txType domain.TransactionType,
) (*TradeResult, error) {
	if err := domain.ValidateQuantity(shares); err != nil {
		return nil, err
	}

	quote, err := domain.LookupQuote(ctx, s.QuoteSource, symbol)
	if err != nil {
		return nil, err
	}

	var result *TradeResult
	err = s.withinUserTx(ctx, userID, func(tx domain.LedgerTx) error {
		record := domain.NewTransaction(userID, quote.Symbol, shares, quote.Price, txType, s.timestamp())

		switch txType {
		case domain.TransactionTypePurchase:
			cash, err := tx.Cash(ctx)
			if err != nil {
				return err
			}
			if cost := record.Amount(); cash.LessThan(cost) {
				return fmt.Errorf("%w: %d %s cost %s, cash is %s",
					domain.ErrInsufficientFunds, shares, quote.Symbol, cost, cash)
			}
		case domain.TransactionTypeSale:
			owned, err := tx.Shares(ctx, quote.Symbol)
			if err != nil {
				return err
			}
			if owned < shares {
				return fmt.Errorf("%w: cannot sell %d %s, own %d",
					domain.ErrInsufficientShares, shares, quote.Symbol, owned)
			}
		}

		cash, err := tx.AdjustCash(ctx, record.CashDelta())
		if err != nil {
			return err
		}
		held, err := tx.ApplyHoldingDelta(ctx, quote.Symbol, record.SignedShares())
		if err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, record); err != nil {
			return err
		}

		result = &TradeResult{Transaction: record, Cash: cash, Shares: held}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade executed",
		slog.String("user_id", userID.String()),
		slog.String("type", string(txType)),
		slog.String("symbol", quote.Symbol),
		slog.Int64("shares", shares),
		slog.String("price", quote.Price.String()),
	)

	return result, nil
}

// DepositCash credits amount to the user's cash and returns the new balance
// The amount must be positive with at most two decimal places.
func (s *PortfolioService) DepositCash(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.ValidateDeposit(amount); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := s.withinUserTx(ctx, userID, func(tx domain.LedgerTx) error {
		cash, err := tx.AdjustCash(ctx, amount)
		if err != nil {
			return err
		}
		balance = cash
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("cash deposited",
		slog.String("user_id", userID.String()),
		slog.String("amount", amount.String()),
	)

	return balance, nil
}

// withinUserTx runs fn as one unit of work, retrying it from scratch when the
// store reports a conflicting concurrent writer.
func (s *PortfolioService) withinUserTx(ctx context.Context, userID uuid.UUID, fn func(tx domain.LedgerTx) error) error {
	for attempt := 0; ; attempt++ {
		err := s.LedgerStore.WithinUserTx(ctx, userID, fn)
		if err == nil || !errors.Is(err, domain.ErrStorageConflict) || attempt >= s.config.MaxRetries {
			return err
		}

		delay := infra.Backoff(attempt, s.config.RetryBaseDelay, s.config.RetryMaxDelay)
		s.logger.Warn("ledger conflict, retrying",
			slog.String("user_id", userID.String()),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
		if sleepErr := infra.Sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("%w: gave up after %d attempts: %w", domain.ErrStorageConflict, attempt+1, sleepErr)
		}
	}
}

// timestamp is truncated to the precision every store keeps
func (s *PortfolioService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
