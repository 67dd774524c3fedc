// Package app wires configuration, storage, quote providers and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/adapter/quote"
	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/stockfolio-backend/internal/config"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/infra"
	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
	"github.com/simaogato/stockfolio-backend/internal/usecase/audit"
	"github.com/simaogato/stockfolio-backend/internal/usecase/history"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/stockfolio-backend/internal/usecase/seeder"
	quoteusecase "github.com/simaogato/stockfolio-backend/internal/usecase/quote"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

// Store is the persistence a running application needs
type Store interface {
	domain.UserRepository
	domain.LedgerStore
}

// Services groups the use cases exposed by every transport
type Services struct {
	Accounts  *account.AccountService
	Portfolio *portfolio.PortfolioService
	Valuation *valuation.ValuationService
	History   *history.HistoryService
	Quotes    *quoteusecase.QuoteService
	Audit     *audit.AuditService
}

// App holds the initialized application
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    Store
	Quotes   domain.QuoteSource
	Services *Services

	closers []func() error
}

// NewLogger builds the slog logger described by cfg
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// New opens the configured store, migrates it and builds every service.
// Close releases the store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store

	quotes, err := NewQuoteSource(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Quotes = quotes

	startingCash, err := cfg.StartingCash()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Services = &Services{
		Accounts: account.NewAccountService(store, startingCash, logger),
		Portfolio: portfolio.NewPortfolioService(store, quotes, portfolio.Config{
			MaxRetries:     cfg.Ledger.MaxRetries,
			RetryBaseDelay: cfg.Ledger.RetryBaseDelay,
			RetryMaxDelay:  cfg.Ledger.RetryMaxDelay,
		}, logger),
		Valuation: valuation.NewValuationService(store, store, quotes, cfg.Valuation.MaxConcurrentLookups, logger),
		History:   history.NewHistoryService(store, store),
		Quotes:    quoteusecase.NewQuoteService(quotes, logger),
		Audit:     audit.NewAuditService(store, store),
	}

	if err := seedAccounts(ctx, cfg, store, logger); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("application initialized",
		slog.String("store", cfg.Store.Driver),
		slog.String("quotes", cfg.Quote.Provider))
	return a, nil
}

// seedAccounts creates the configured fixture accounts that do not exist yet
func seedAccounts(ctx context.Context, cfg *config.Config, store domain.UserRepository, logger *slog.Logger) error {
	if len(cfg.Seed) == 0 {
		return nil
	}
	seeds := make([]seeder.AccountSeed, 0, len(cfg.Seed))
	for _, s := range cfg.Seed {
		cash, err := decimal.NewFromString(s.Cash)
		if err != nil {
			return fmt.Errorf("invalid seed cash for %s: %w", s.Username, err)
		}
		seeds = append(seeds, seeder.AccountSeed{Username: s.Username, APIKey: s.APIKey, Cash: cash})
	}
	if _, err := seeder.NewAccountSeeder(store, logger).Seed(ctx, seeds); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (Store, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil

	case config.DriverSQLite:
		db, err := sqlite.NewDB(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		return db.NewLedgerStore(), nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		return db.NewLedgerStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}
}

// NewQuoteSource builds the configured quote provider
func NewQuoteSource(cfg *config.Config, logger *slog.Logger) (domain.QuoteSource, error) {
	switch cfg.Quote.Provider {
	case config.ProviderStatic:
		entries := make([]quote.StaticQuote, 0, len(cfg.Quote.Static))
		for _, q := range cfg.Quote.Static {
			entries = append(entries, quote.StaticQuote{Symbol: q.Symbol, Name: q.Name, Price: q.Price})
		}
		src, err := quote.NewStaticSource(entries)
		if err != nil {
			return nil, err
		}
		return src, nil

	case config.ProviderHTTP:
		hc := quote.DefaultHTTPConfig()
		hc.URLTemplate = cfg.Quote.URLTemplate
		hc.Token = cfg.Quote.Token
		if cfg.Quote.PricePath != "" {
			hc.PricePath = cfg.Quote.PricePath
		}
		hc.NamePath = cfg.Quote.NamePath
		hc.SymbolPath = cfg.Quote.SymbolPath
		hc.Timeout = cfg.Quote.Timeout
		hc.Retries = cfg.Quote.Retries
		hc.RateLimit = cfg.Quote.RateLimit
		hc.Burst = cfg.Quote.Burst
		hc.Breaker = infra.DefaultCircuitBreakerConfig("quote-provider")
		hc.Breaker.FailureThreshold = cfg.Quote.BreakerFailures
		hc.Breaker.Timeout = cfg.Quote.BreakerCooldown
		src, err := quote.NewHTTPSource(hc, nil, logger)
		if err != nil {
			return nil, err
		}
		return src, nil

	default:
		return nil, fmt.Errorf("unknown quote provider: %q", cfg.Quote.Provider)
	}
}

// Close releases everything New opened
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
