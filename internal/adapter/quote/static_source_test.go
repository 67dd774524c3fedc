package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

func TestStaticSource(t *testing.T) {
	source, err := NewStaticSource([]StaticQuote{
		{Symbol: "aapl", Name: "Apple Inc.", Price: "189.95"},
		{Symbol: "NFLX", Price: "612.04"},
	})
	require.NoError(t, err)

	quote, err := source.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "189.95", quote.Price.String())

	quote, err = source.Lookup(context.Background(), " nflx ")
	require.NoError(t, err)
	assert.Equal(t, "NFLX", quote.Name, "name defaults to the symbol")

	_, err = source.Lookup(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, domain.ErrUnknownSymbol))

	require.NoError(t, source.Set("AAPL", "Apple Inc.", decimal.NewFromInt(200)))
	quote, err = source.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "200", quote.Price.String())
}

func TestStaticSource_InvalidEntries(t *testing.T) {
	_, err := NewStaticSource([]StaticQuote{{Symbol: "AAPL", Price: "abc"}})
	assert.Error(t, err)

	_, err = NewStaticSource([]StaticQuote{{Symbol: "AAPL", Price: "0"}})
	assert.Error(t, err)

	_, err = NewStaticSource([]StaticQuote{{Symbol: " ", Price: "1"}})
	assert.Error(t, err)
}

func TestStaticSource_Cancelled(t *testing.T) {
	source, err := NewStaticSource(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Lookup(ctx, "AAPL")
	assert.True(t, errors.Is(err, domain.ErrQuoteUnavailable))
}
