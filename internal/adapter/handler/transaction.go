package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/adapter/middleware"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/history"
)

type TransactionHandler struct {
	Service *history.HistoryService
}

type TransactionResponse struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Type       string          `json:"type"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// GetHistory API: the caller's transactions, newest first
func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	txs, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return err
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return c.JSON(fiber.Map{
		"transactions": out,
	})
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         tx.ID.String(),
		Symbol:     tx.Symbol,
		Shares:     tx.Shares,
		Price:      tx.Price,
		Type:       string(tx.Type),
		ExecutedAt: tx.ExecutedAt.UTC(),
	}
}
