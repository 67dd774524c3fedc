package middleware

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

const userIDLocal = "user_id"

// Authenticator resolves an API key to the owning user's ID
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error)
}

// Protected rejects requests without a valid API key in the Authorization
// header ("Bearer sk_live_..." or the raw key) and stores the caller's user
// ID for the handlers. Failures are returned to the app's error handler.
func Protected(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Get Token from Header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fmt.Errorf("%w: missing API key", domain.ErrUnauthenticated)
		}

		// 2. Resolve it (only the hash is compared)
		userID, err := auth.Authenticate(c.UserContext(), authHeader)
		if err != nil {
			return err
		}

		// 3. Save User ID to Context (So handler knows who is calling)
		c.Locals(userIDLocal, userID)

		return c.Next()
	}
}

// UserID returns the caller stored by Protected
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(userIDLocal).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: no authenticated user", domain.ErrUnauthenticated)
	}
	return userID, nil
}
