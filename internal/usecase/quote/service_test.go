package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuoteSource is a mock implementation of QuoteSource for testing
type MockQuoteSource struct {
	mock.Mock
}

func (m *MockQuoteSource) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		setupMock func(*MockQuoteSource)
		wantErr   error
		wantName  string
	}{
		{
			name:   "Known symbol returns quote",
			symbol: "nflx",
			setupMock: func(m *MockQuoteSource) {
				m.On("Lookup", mock.Anything, "NFLX").Return(&domain.Quote{Symbol: "NFLX", Name: "Netflix, Inc.", Price: decimal.RequireFromString("612.04")}, nil)
			},
			wantName: "Netflix, Inc.",
		},
		{
			name:   "Unknown symbol",
			symbol: "ZZZZ",
			setupMock: func(m *MockQuoteSource) {
				m.On("Lookup", mock.Anything, "ZZZZ").Return(nil, domain.ErrUnknownSymbol)
			},
			wantErr: domain.ErrUnknownSymbol,
		},
		{
			name:      "Blank symbol never reaches the source",
			symbol:    " ",
			setupMock: func(m *MockQuoteSource) {},
			wantErr:   domain.ErrUnknownSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQuotes := new(MockQuoteSource)
			tt.setupMock(mockQuotes)
			service := NewQuoteService(mockQuotes, nil)

			quote, err := service.Quote(context.Background(), tt.symbol)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, quote.Name)
			mockQuotes.AssertExpectations(t)
		})
	}
}
