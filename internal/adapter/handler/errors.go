package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// KindInvalidRequest marks bodies or parameters that could not be parsed
const KindInvalidRequest = "InvalidRequest"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// badRequest wraps a parse failure so ErrorHandler reports it as InvalidRequest
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// StatusFor maps a rejection kind to its HTTP status
func StatusFor(kind string) int {
	switch kind {
	case domain.KindInvalidQuantity, domain.KindInvalidAmount, domain.KindInvalidUsername, KindInvalidRequest:
		return fiber.StatusBadRequest
	case domain.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case domain.KindUnknownSymbol, domain.KindUserNotFound:
		return fiber.StatusNotFound
	case domain.KindUsernameTaken, domain.KindStorageConflict:
		return fiber.StatusConflict
	case domain.KindInsufficientFunds, domain.KindInsufficientShares:
		return fiber.StatusUnprocessableEntity
	case domain.KindQuoteUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler writes {"error": kind, "message": reason} for errors returned
// by handlers and middleware
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Error: "HTTP", Message: fe.Message})
		}

		var br *badRequest
		if errors.As(err, &br) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: KindInvalidRequest, Message: br.msg})
		}

		kind := domain.ErrorKind(err)
		msg := err.Error()
		if kind == domain.KindInternal {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
			msg = "internal error"
		}
		return c.Status(StatusFor(kind)).JSON(ErrorResponse{Error: kind, Message: msg})
	}
}
