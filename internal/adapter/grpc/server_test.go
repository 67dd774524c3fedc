package grpc

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/stockfolio-backend/internal/adapter/quote"
	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
	"github.com/simaogato/stockfolio-backend/internal/usecase/history"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	quoteusecase "github.com/simaogato/stockfolio-backend/internal/usecase/quote"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

// newTestClient serves a Server over an in-memory listener and returns an
// unauthenticated client for it
func newTestClient(t *testing.T) *Client {
	t.Helper()

	store := memory.NewStore()
	quotes, err := quote.NewStaticSource([]quote.StaticQuote{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: "100"},
		{Symbol: "MSFT", Name: "Microsoft", Price: "50"},
	})
	require.NoError(t, err)

	srv := NewServer(
		account.NewAccountService(store, decimal.NewFromInt(10000), nil),
		portfolio.NewPortfolioService(store, quotes, portfolio.DefaultConfig(), nil),
		valuation.NewValuationService(store, store, quotes, 2, nil),
		history.NewHistoryService(store, store),
		quoteusecase.NewQuoteService(quotes, nil),
	)

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(srv, nil)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		WithCodec(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn, "")
}

func TestServer_TradingFlow(t *testing.T) {
	ctx := context.Background()
	anon := newTestClient(t)

	reg, err := anon.Register(ctx, &RegisterRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.Username)
	assert.Equal(t, "10000", reg.Cash)
	require.NotEmpty(t, reg.APIKey)

	c := anon.WithAPIKey(reg.APIKey)

	bought, err := c.Buy(ctx, &TradeRequest{Symbol: "aapl", Shares: SharesOf(10)})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", bought.Transaction.Symbol)
	assert.Equal(t, "PURCHASE", bought.Transaction.Type)
	assert.Equal(t, "100", bought.Transaction.Price)
	assert.Equal(t, "9000", bought.Cash)
	assert.Equal(t, int64(10), bought.Shares)

	sold, err := c.Sell(ctx, &TradeRequest{Symbol: "AAPL", Shares: SharesOf(4)})
	require.NoError(t, err)
	assert.Equal(t, "9400", sold.Cash)
	assert.Equal(t, int64(6), sold.Shares)

	dep, err := c.DepositCash(ctx, &DepositCashRequest{Amount: "100.50"})
	require.NoError(t, err)
	assert.Equal(t, "9500.5", dep.Cash)

	pf, err := c.GetPortfolio(ctx, &GetPortfolioRequest{})
	require.NoError(t, err)
	require.Len(t, pf.Holdings, 1)
	assert.Equal(t, Position{Symbol: "AAPL", Name: "Apple Inc.", Shares: 6, UnitPrice: "100", LineTotal: "600"}, pf.Holdings[0])
	assert.Equal(t, "10100.5", pf.NetWorth)

	hist, err := c.ListTransactions(ctx, &ListTransactionsRequest{})
	require.NoError(t, err)
	require.Len(t, hist.Transactions, 2)
	assert.Equal(t, "SALE", hist.Transactions[0].Type)
	assert.Equal(t, "PURCHASE", hist.Transactions[1].Type)

	purchase := hist.Transactions[1]
	require.NotNil(t, purchase.ExecutedAt)
	assert.NoError(t, purchase.ExecutedAt.CheckValid())
	assert.True(t, bought.Transaction.ExecutedTime().Equal(purchase.ExecutedTime()))
	assert.WithinDuration(t, time.Now(), purchase.ExecutedTime(), time.Minute)
	assert.Equal(t, time.UTC, purchase.ExecutedTime().Location())
	assert.False(t, hist.Transactions[0].ExecutedTime().Before(purchase.ExecutedTime()))

	q, err := c.Quote(ctx, &QuoteRequest{Symbol: "msft"})
	require.NoError(t, err)
	assert.Equal(t, &QuoteResponse{Symbol: "MSFT", Name: "Microsoft", Price: "50"}, q)
}

func TestServer_StatusCodes(t *testing.T) {
	ctx := context.Background()
	anon := newTestClient(t)

	reg, err := anon.Register(ctx, &RegisterRequest{Username: "bob"})
	require.NoError(t, err)
	c := anon.WithAPIKey(reg.APIKey)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{
			name: "No API key",
			call: func() error { _, err := anon.GetPortfolio(ctx, &GetPortfolioRequest{}); return err },
			code: codes.Unauthenticated,
		},
		{
			name: "Unknown API key",
			call: func() error {
				_, err := anon.WithAPIKey("sk_live_nope").GetPortfolio(ctx, &GetPortfolioRequest{})
				return err
			},
			code: codes.Unauthenticated,
		},
		{
			name: "Username taken",
			call: func() error { _, err := anon.Register(ctx, &RegisterRequest{Username: "bob"}); return err },
			code: codes.AlreadyExists,
		},
		{
			name: "Zero shares",
			call: func() error { _, err := c.Buy(ctx, &TradeRequest{Symbol: "AAPL", Shares: SharesOf(0)}); return err },
			code: codes.InvalidArgument,
		},
		{
			name: "Fractional shares",
			call: func() error {
				_, err := c.Buy(ctx, &TradeRequest{Symbol: "AAPL", Shares: json.RawMessage("1.5")})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "Non-numeric shares",
			call: func() error {
				_, err := c.Sell(ctx, &TradeRequest{Symbol: "AAPL", Shares: json.RawMessage(`"abc"`)})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "Shares beyond int64",
			call: func() error {
				_, err := c.Buy(ctx, &TradeRequest{Symbol: "AAPL", Shares: json.RawMessage("1e30")})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "Unknown symbol",
			call: func() error { _, err := c.Buy(ctx, &TradeRequest{Symbol: "ZZZZ", Shares: SharesOf(1)}); return err },
			code: codes.NotFound,
		},
		{
			name: "Insufficient funds",
			call: func() error { _, err := c.Buy(ctx, &TradeRequest{Symbol: "AAPL", Shares: SharesOf(101)}); return err },
			code: codes.FailedPrecondition,
		},
		{
			name: "Insufficient shares",
			call: func() error { _, err := c.Sell(ctx, &TradeRequest{Symbol: "MSFT", Shares: SharesOf(1)}); return err },
			code: codes.FailedPrecondition,
		},
		{
			name: "Malformed amount",
			call: func() error { _, err := c.DepositCash(ctx, &DepositCashRequest{Amount: "ten"}); return err },
			code: codes.InvalidArgument,
		},
		{
			name: "Negative amount",
			call: func() error { _, err := c.DepositCash(ctx, &DepositCashRequest{Amount: "-5"}); return err },
			code: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}

	pf, err := c.GetPortfolio(ctx, &GetPortfolioRequest{})
	require.NoError(t, err)
	assert.Equal(t, "10000", pf.Cash, "rejected calls must not change cash")
	assert.Empty(t, pf.Holdings)
}
