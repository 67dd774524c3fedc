package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
)

type AccountHandler struct {
	Service *account.AccountService
}

// Request Models
type RegisterRequest struct {
	Username string `json:"username"`
}

type RegisterResponse struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Cash     decimal.Decimal `json:"cash"`
	APIKey   string          `json:"api_key"`
}

// Register API: creates a user with the starting cash and returns its key once
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return &badRequest{"invalid body"}
	}

	user, apiKey, err := h.Service.Register(c.UserContext(), req.Username)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
		Cash:     user.Cash,
		APIKey:   apiKey,
	})
}
