package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls a PortfolioService server using the JSON codec
type Client struct {
	conn   grpc.ClientConnInterface
	apiKey string
}

// NewClient wraps conn. The connection must be created with
// WithCodec (or the call options below) so requests use the JSON codec.
func NewClient(conn grpc.ClientConnInterface, apiKey string) *Client {
	return &Client{conn: conn, apiKey: apiKey}
}

// WithCodec is the dial option every PortfolioService client needs
func WithCodec() grpc.DialOption {
	return grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec))
}

// WithAPIKey returns a client for the same connection authenticated as apiKey
func (c *Client) WithAPIKey(apiKey string) *Client {
	return &Client{conn: c.conn, apiKey: apiKey}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.apiKey)
	}
	return c.conn.Invoke(ctx, method, in, out, grpc.ForceCodec(Codec))
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.invoke(ctx, MethodRegister, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Quote(ctx context.Context, in *QuoteRequest) (*QuoteResponse, error) {
	out := new(QuoteResponse)
	if err := c.invoke(ctx, MethodQuote, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Buy(ctx context.Context, in *TradeRequest) (*TradeResponse, error) {
	out := new(TradeResponse)
	if err := c.invoke(ctx, MethodBuy, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Sell(ctx context.Context, in *TradeRequest) (*TradeResponse, error) {
	out := new(TradeResponse)
	if err := c.invoke(ctx, MethodSell, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DepositCash(ctx context.Context, in *DepositCashRequest) (*DepositCashResponse, error) {
	out := new(DepositCashResponse)
	if err := c.invoke(ctx, MethodDepositCash, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPortfolio(ctx context.Context, in *GetPortfolioRequest) (*GetPortfolioResponse, error) {
	out := new(GetPortfolioResponse)
	if err := c.invoke(ctx, MethodGetPortfolio, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTransactions(ctx context.Context, in *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	out := new(ListTransactionsResponse)
	if err := c.invoke(ctx, MethodListTransactions, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecutedTime returns when the transaction was executed, in UTC
func (t *Transaction) ExecutedTime() time.Time {
	return t.ExecutedAt.AsTime()
}
