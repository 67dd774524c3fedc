package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs each request after the error handler has set its status.
// 4xx responses are logged at Warn, 5xx at Error.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app's error handler write the response now so the
			// logged status is the final one
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		code := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", code),
			slog.Duration("duration", time.Since(start)),
		}
		switch {
		case code >= fiber.StatusInternalServerError:
			logger.Error("http request failed", attrs...)
		case code >= fiber.StatusBadRequest:
			logger.Warn("http request rejected", attrs...)
		default:
			logger.Debug("http request", attrs...)
		}
		return nil
	}
}
