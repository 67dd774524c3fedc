package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/simaogato/stockfolio-backend/internal/adapter/middleware"
)

// Handlers groups every HTTP handler
type Handlers struct {
	Accounts     *AccountHandler
	Quotes       *QuoteHandler
	Portfolio    *PortfolioHandler
	Transactions *TransactionHandler
}

// NewApp builds the Fiber app with the /v1 routes
func NewApp(h Handlers, auth middleware.Authenticator, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))

	api := app.Group("/v1")

	// Public
	api.Post("/users", h.Accounts.Register)

	// Protected
	protected := middleware.Protected(auth)
	api.Get("/quotes/:symbol", protected, h.Quotes.GetQuote)
	api.Post("/buy", protected, h.Portfolio.Buy)
	api.Post("/sell", protected, h.Portfolio.Sell)
	api.Post("/deposit", protected, h.Portfolio.Deposit)
	api.Get("/portfolio", protected, h.Portfolio.GetPortfolio)
	api.Get("/transactions", protected, h.Transactions.GetHistory)

	return app
}
