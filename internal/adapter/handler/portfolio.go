package handler

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/adapter/middleware"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

type PortfolioHandler struct {
	Trading   *portfolio.PortfolioService
	Valuation *valuation.ValuationService
}

// Request Models
type TradeRequest struct {
	Symbol string          `json:"symbol"`
	Shares json.RawMessage `json:"shares"` // validated by domain.ParseQuantity
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"` // "12.50" or 12.50
}

type TradeResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Cash        decimal.Decimal     `json:"cash"`
	Shares      int64               `json:"shares"`
}

type DepositResponse struct {
	Cash decimal.Decimal `json:"cash"`
}

type PositionResponse struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    int64           `json:"shares"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type PortfolioResponse struct {
	Cash          decimal.Decimal    `json:"cash"`
	Holdings      []PositionResponse `json:"holdings"`
	HoldingsValue decimal.Decimal    `json:"holdings_value"`
	NetWorth      decimal.Decimal    `json:"net_worth"`
}

// Buy API
func (h *PortfolioHandler) Buy(c *fiber.Ctx) error {
	return h.trade(c, h.Trading.Buy)
}

// Sell API
func (h *PortfolioHandler) Sell(c *fiber.Ctx) error {
	return h.trade(c, h.Trading.Sell)
}

type tradeFunc = func(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*portfolio.TradeResult, error)

func (h *PortfolioHandler) trade(c *fiber.Ctx, exec tradeFunc) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return &badRequest{"invalid body"}
	}

	shares, err := domain.ParseQuantity(string(req.Shares))
	if err != nil {
		return err
	}

	result, err := exec(c.UserContext(), userID, req.Symbol, shares)
	if err != nil {
		return err
	}

	return c.JSON(TradeResponse{
		Transaction: toTransactionResponse(result.Transaction),
		Cash:        result.Cash,
		Shares:      result.Shares,
	})
}

// Deposit API
func (h *PortfolioHandler) Deposit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return &badRequest{"invalid body"}
	}

	cash, err := h.Trading.DepositCash(c.UserContext(), userID, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(DepositResponse{Cash: cash})
}

// GetPortfolio API: cash, holdings at current quotes and net worth
func (h *PortfolioHandler) GetPortfolio(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	view, err := h.Valuation.Summarize(c.UserContext(), userID)
	if err != nil {
		return err
	}

	holdings := make([]PositionResponse, 0, len(view.Holdings))
	for _, p := range view.Holdings {
		holdings = append(holdings, PositionResponse{
			Symbol:    p.Symbol,
			Name:      p.Name,
			Shares:    p.Shares,
			UnitPrice: p.UnitPrice,
			LineTotal: p.LineTotal,
		})
	}

	return c.JSON(PortfolioResponse{
		Cash:          view.Cash,
		Holdings:      holdings,
		HoldingsValue: view.HoldingsValue,
		NetWorth:      view.NetWorth,
	})
}
