package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxUsernameLength bounds the username column.
const MaxUsernameLength = 64

// User represents a registered trader in the domain layer
type User struct {
	ID         uuid.UUID
	Username   string
	Cash       decimal.Decimal // never negative
	APIKeyHash string          // sha256 hex of the issued API key
	CreatedAt  time.Time
}

// NormalizeUsername trims surrounding whitespace and checks the result is
// usable as a login name.
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if len(name) > MaxUsernameLength {
		return "", fmt.Errorf("%w: username longer than %d characters", ErrInvalidUsername, MaxUsernameLength)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: username must not contain whitespace", ErrInvalidUsername)
		}
	}
	return name, nil
}

// Validate ensures the user adheres to domain rules
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if _, err := NormalizeUsername(u.Username); err != nil {
		return err
	}
	if u.Cash.IsNegative() {
		return errors.New("user cash cannot be negative")
	}
	if u.APIKeyHash == "" {
		return errors.New("user API key hash is required")
	}
	return nil
}
