package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a trade
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeSale     TransactionType = "SALE"
)

// Transaction is an immutable record of one executed trade.
// Transactions are append-only: they are never updated or deleted.
type Transaction struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Symbol     string
	Shares     int64           // always positive; direction comes from Type
	Price      decimal.Decimal // quote price at execution time
	Type       TransactionType // 'PURCHASE' or 'SALE'
	ExecutedAt time.Time
}

// NewTransaction builds a transaction record with a fresh ID.
func NewTransaction(userID uuid.UUID, symbol string, shares int64, price decimal.Decimal, txType TransactionType, at time.Time) *Transaction {
	return &Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Symbol:     symbol,
		Shares:     shares,
		Price:      price,
		Type:       txType,
		ExecutedAt: at,
	}
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return errors.New("transaction ID is required")
	}
	if t.UserID == uuid.Nil {
		return errors.New("transaction user ID is required")
	}
	if t.Symbol == "" {
		return errors.New("transaction symbol is required")
	}
	if t.Shares <= 0 {
		return errors.New("transaction shares must be positive")
	}
	if t.Price.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction price must be positive")
	}
	if t.Type != TransactionTypePurchase && t.Type != TransactionTypeSale {
		return errors.New("transaction type must be PURCHASE or SALE")
	}
	if t.ExecutedAt.IsZero() {
		return errors.New("transaction execution time is required")
	}
	return nil
}

// SignedShares returns the share delta this transaction applies to its holding.
func (t *Transaction) SignedShares() int64 {
	if t.Type == TransactionTypeSale {
		return -t.Shares
	}
	return t.Shares
}

// Amount returns price × shares.
func (t *Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}

// CashDelta returns the signed cash movement caused by this transaction.
func (t *Transaction) CashDelta() decimal.Decimal {
	if t.Type == TransactionTypePurchase {
		return t.Amount().Neg()
	}
	return t.Amount()
}
