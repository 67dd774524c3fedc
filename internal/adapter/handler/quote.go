package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/usecase/quote"
)

type QuoteHandler struct {
	Service *quote.QuoteService
}

type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// GetQuote API: /v1/quotes/:symbol
func (h *QuoteHandler) GetQuote(c *fiber.Ctx) error {
	q, err := h.Service.Quote(c.UserContext(), c.Params("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(QuoteResponse{Symbol: q.Symbol, Name: q.Name, Price: q.Price})
}
