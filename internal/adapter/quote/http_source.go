package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/infra"
)

// maxBodyBytes caps how much of a provider response is read
const maxBodyBytes = 1 << 20

// HTTPConfig describes a JSON quote endpoint
type HTTPConfig struct {
	// URLTemplate is the request URL with {symbol} and {token} placeholders,
	// e.g. "https://cloud.iexapis.com/stable/stock/{symbol}/quote?token={token}"
	URLTemplate string
	Token       string

	// JSONPath expressions locating the fields in the response body
	PricePath  string
	NamePath   string
	SymbolPath string

	Timeout        time.Duration
	Retries        int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	RateLimit float64 // requests per second
	Burst     int

	Breaker infra.CircuitBreakerConfig
}

// DefaultHTTPConfig returns settings for an IEX-style quote endpoint
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		PricePath:      "$.latestPrice",
		NamePath:       "$.companyName",
		SymbolPath:     "$.symbol",
		Timeout:        5 * time.Second,
		Retries:        2,
		RetryBaseDelay: 200 * time.Millisecond,
		RetryMaxDelay:  2 * time.Second,
		RateLimit:      10,
		Burst:          10,
		Breaker:        infra.DefaultCircuitBreakerConfig("quote-provider"),
	}
}

// HTTPSource implements domain.QuoteSource against a JSON HTTP API
type HTTPSource struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *infra.RateLimiter
	breaker *infra.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPSource creates a quote source for cfg. A nil client gets one with
// cfg.Timeout.
func NewHTTPSource(cfg HTTPConfig, client *http.Client, logger *slog.Logger) (*HTTPSource, error) {
	if !strings.Contains(cfg.URLTemplate, "{symbol}") {
		return nil, errors.New("quote URL template must contain {symbol}")
	}
	if _, err := url.Parse(strings.NewReplacer("{symbol}", "X", "{token}", "X").Replace(cfg.URLTemplate)); err != nil {
		return nil, fmt.Errorf("invalid quote URL template: %w", err)
	}
	if cfg.PricePath == "" {
		return nil, errors.New("quote price path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &HTTPSource{
		cfg:     cfg,
		client:  client,
		limiter: infra.NewRateLimiter(cfg.Burst, cfg.RateLimit),
		breaker: infra.NewCircuitBreaker(cfg.Breaker, logger),
		logger:  logger,
	}, nil
}

// retryableError marks failures worth another attempt (transport, 429, 5xx)
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// countsAsFailure decides which errors trip the breaker. A symbol that does
// not exist or a caller that gave up says nothing about provider health.
func countsAsFailure(err error) bool {
	return !errors.Is(err, domain.ErrUnknownSymbol) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Lookup fetches a fresh quote for symbol
func (s *HTTPSource) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	var lastErr error

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := infra.Backoff(attempt-1, s.cfg.RetryBaseDelay, s.cfg.RetryMaxDelay)
			if err := infra.Sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
		}

		var quote *domain.Quote
		err := s.breaker.Execute(func() error {
			var err error
			quote, err = s.fetch(ctx, symbol)
			return err
		}, countsAsFailure)
		if err == nil {
			return quote, nil
		}
		if errors.Is(err, infra.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
		}

		var retry *retryableError
		if !errors.As(err, &retry) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("quote lookup failed, retrying",
			slog.String("symbol", symbol),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, lastErr)
}

func (s *HTTPSource) fetch(ctx context.Context, symbol string) (*domain.Quote, error) {
	addr := strings.NewReplacer(
		"{symbol}", url.PathEscape(symbol),
		"{token}", url.QueryEscape(s.cfg.Token),
	).Replace(s.cfg.URLTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", domain.ErrQuoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, ctx.Err())
		}
		return nil, &retryableError{err: fmt.Errorf("%w: request failed: %w", domain.ErrQuoteUnavailable, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("%w: provider returned %s", domain.ErrQuoteUnavailable, resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: provider returned %s", domain.ErrQuoteUnavailable, resp.Status)
	}

	var body any
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s response: %w", domain.ErrQuoteUnavailable, symbol, err)
	}

	return s.extract(symbol, body)
}

// extract reads the configured fields out of a decoded JSON document
func (s *HTTPSource) extract(symbol string, body any) (*domain.Quote, error) {
	rawPrice, ok := lookupPath(s.cfg.PricePath, body)
	if !ok || rawPrice == nil {
		return nil, fmt.Errorf("%w: %s has no price", domain.ErrUnknownSymbol, symbol)
	}
	price, err := toDecimal(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %s price %v: %w", domain.ErrQuoteUnavailable, symbol, rawPrice, err)
	}

	quote := &domain.Quote{Symbol: symbol, Name: symbol, Price: price}
	if v, ok := lookupPath(s.cfg.NamePath, body); ok {
		if name, ok := v.(string); ok && name != "" {
			quote.Name = name
		}
	}
	if v, ok := lookupPath(s.cfg.SymbolPath, body); ok {
		if sym, ok := v.(string); ok && sym != "" {
			quote.Symbol = sym
		}
	}

	return quote, nil
}

// lookupPath evaluates path against doc. jsonpath may answer with a single
// value or a list of one; the first value is kept.
func lookupPath(path string, doc any) (any, bool) {
	if path == "" {
		return nil, false
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, true
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %T", v)
	}
}
