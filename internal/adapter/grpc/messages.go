package grpc

import (
	"encoding/json"
	"strconv"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Username string `json:"username"`
}

// RegisterResponse carries the new account and its API key (shown once)
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Cash     string `json:"cash"`
	APIKey   string `json:"api_key"`
}

type QuoteRequest struct {
	Symbol string `json:"symbol"`
}

type QuoteResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  string `json:"price"`
}

// TradeRequest is used by both Buy and Sell. Shares holds the raw JSON value
// so that fractional or malformed counts are rejected as invalid quantities
// by the server rather than by the codec.
type TradeRequest struct {
	Symbol string          `json:"symbol"`
	Shares json.RawMessage `json:"shares"`
}

// SharesOf encodes a whole share count for a TradeRequest
func SharesOf(n int64) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(n, 10))
}

// TradeResponse reports the executed trade and the balances after it
type TradeResponse struct {
	Transaction Transaction `json:"transaction"`
	Cash        string      `json:"cash"`
	Shares      int64       `json:"shares"`
}

type DepositCashRequest struct {
	Amount string `json:"amount"`
}

type DepositCashResponse struct {
	Cash string `json:"cash"`
}

type GetPortfolioRequest struct{}

type GetPortfolioResponse struct {
	Cash          string     `json:"cash"`
	Holdings      []Position `json:"holdings"`
	HoldingsValue string     `json:"holdings_value"`
	NetWorth      string     `json:"net_worth"`
}

type Position struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Shares    int64  `json:"shares"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type ListTransactionsRequest struct{}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// Transaction is the wire form of an executed trade
type Transaction struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Shares     int64     `json:"shares"`
	Price      string    `json:"price"`
	Type       string    `json:"type"`
	ExecutedAt *timestamppb.Timestamp `json:"executed_at"`
}
