package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is the aggregate share count of one user in one symbol.
// It is a materialized view of the user's transactions; a holding with zero
// shares does not exist.
type Holding struct {
	UserID uuid.UUID
	Symbol string
	Shares int64
}

// ApplyShareDelta returns current+delta, refusing to produce a negative count
// or one beyond the int64 range. A result of zero means the holding must be
// removed.
func ApplyShareDelta(current, delta int64) (int64, error) {
	if delta > 0 && current > math.MaxInt64-delta {
		return current, fmt.Errorf("%w: holding of %d cannot grow by %d shares", ErrInvalidQuantity, current, delta)
	}
	next := current + delta
	if next < 0 {
		return current, fmt.Errorf("%w: cannot remove %d shares from %d owned", ErrInsufficientShares, -delta, current)
	}
	return next, nil
}

// ValidateQuantity checks a requested share count.
func ValidateQuantity(shares int64) error {
	if shares <= 0 {
		return fmt.Errorf("%w: shares must be a positive integer, got %d", ErrInvalidQuantity, shares)
	}
	return nil
}

var (
	maxShares = decimal.NewFromInt(math.MaxInt64)
	minShares = decimal.NewFromInt(math.MinInt64)
)

// ParseQuantity reads a share count as sent by a caller: a JSON number, a
// quoted number or plain text. Anything that is not a positive whole number
// within int64 range is ErrInvalidQuantity.
func ParseQuantity(raw string) (int64, error) {
	text := strings.TrimSpace(raw)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	if text == "" || text == "null" {
		return 0, fmt.Errorf("%w: shares are required", ErrInvalidQuantity)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: shares %q is not a number", ErrInvalidQuantity, text)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: shares must be a whole number, got %s", ErrInvalidQuantity, text)
	}
	if d.GreaterThan(maxShares) || d.LessThan(minShares) {
		return 0, fmt.Errorf("%w: shares %s out of range", ErrInvalidQuantity, text)
	}

	shares := d.IntPart()
	if err := ValidateQuantity(shares); err != nil {
		return 0, err
	}
	return shares, nil
}

// CashScale is the number of fractional digits accepted for cash deposits.
const CashScale = 2

// ValidateDeposit checks that amount is a non-negative cash amount with at
// most CashScale fractional digits. Zero is a valid no-op deposit.
func ValidateDeposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: deposit cannot be negative, got %s", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Truncate(CashScale)) {
		return fmt.Errorf("%w: deposit %s has more than %d decimal places", ErrInvalidAmount, amount, CashScale)
	}
	return nil
}
