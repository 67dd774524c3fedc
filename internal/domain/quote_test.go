package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteFunc func(ctx context.Context, symbol string) (*Quote, error)

func (f quoteFunc) Lookup(ctx context.Context, symbol string) (*Quote, error) { return f(ctx, symbol) }

func TestLookupQuote(t *testing.T) {
	transport := errors.New("connection refused")

	tests := []struct {
		name    string
		symbol  string
		source  quoteFunc
		want    string
		wantErr error
	}{
		{
			name:   "Symbol is normalized before and after lookup",
			symbol: " aapl ",
			source: func(ctx context.Context, symbol string) (*Quote, error) {
				assert.Equal(t, "AAPL", symbol)
				return &Quote{Symbol: "aapl", Name: "Apple Inc.", Price: decimal.NewFromInt(100)}, nil
			},
			want: "AAPL",
		},
		{
			name:   "Missing symbol in quote falls back to the request",
			symbol: "msft",
			source: func(ctx context.Context, symbol string) (*Quote, error) {
				return &Quote{Price: decimal.NewFromInt(1)}, nil
			},
			want: "MSFT",
		},
		{
			name:    "Empty symbol is unknown without a lookup",
			symbol:  "  ",
			source:  func(ctx context.Context, symbol string) (*Quote, error) { t.Fatal("lookup must not run"); return nil, nil },
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "Not found passes through",
			symbol:  "ZZZZ",
			source:  func(ctx context.Context, symbol string) (*Quote, error) { return nil, ErrUnknownSymbol },
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "Transport failure becomes unavailable",
			symbol:  "AAPL",
			source:  func(ctx context.Context, symbol string) (*Quote, error) { return nil, transport },
			wantErr: ErrQuoteUnavailable,
		},
		{
			name:    "Cancelled lookup becomes unavailable",
			symbol:  "AAPL",
			source:  func(ctx context.Context, symbol string) (*Quote, error) { return nil, context.Canceled },
			wantErr: ErrQuoteUnavailable,
		},
		{
			name:   "Zero price is unusable",
			symbol: "AAPL",
			source: func(ctx context.Context, symbol string) (*Quote, error) {
				return &Quote{Symbol: "AAPL", Price: decimal.Zero}, nil
			},
			wantErr: ErrQuoteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := LookupQuote(context.Background(), tt.source, tt.symbol)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, quote)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, quote.Symbol)
		})
	}
}

func TestLookupQuote_KeepsCause(t *testing.T) {
	source := quoteFunc(func(ctx context.Context, symbol string) (*Quote, error) { return nil, context.DeadlineExceeded })

	_, err := LookupQuote(context.Background(), source, "AAPL")

	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
