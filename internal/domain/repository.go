package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// Create creates a new user
	// Returns ErrUsernameTaken if the username already exists
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by its ID
	// Returns ErrUserNotFound if no such user exists
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByAPIKeyHash retrieves the user owning the given API key hash
	GetByAPIKeyHash(ctx context.Context, keyHash string) (*User, error)
}

// LedgerTx is the unit of work for one user's ledger. Everything done through
// it commits together or not at all.
type LedgerTx interface {
	// Cash returns the user's cash as seen inside the unit of work
	Cash(ctx context.Context) (decimal.Decimal, error)

	// Shares returns the user's holding in symbol, 0 when there is none
	Shares(ctx context.Context, symbol string) (int64, error)

	// AdjustCash adds delta to the user's cash and returns the new balance
	// Returns ErrInsufficientFunds instead of producing a negative balance
	AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error)

	// AppendTransaction records an executed trade
	AppendTransaction(ctx context.Context, tx *Transaction) error

	// ApplyHoldingDelta adds delta shares to the holding in symbol, creating
	// it when absent and deleting it when the result is zero
	// Returns ErrInsufficientShares instead of producing a negative holding
	ApplyHoldingDelta(ctx context.Context, symbol string, delta int64) (int64, error)
}

// LedgerStore defines the interface for ledger persistence operations
type LedgerStore interface {
	// WithinUserTx runs fn as a single atomic unit over the user's cash,
	// holdings and transactions. Calls for the same user are serialized;
	// calls for different users may run in parallel.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrStorageConflict if a concurrent writer forced the unit to abort.
	WithinUserTx(ctx context.Context, userID uuid.UUID, fn func(tx LedgerTx) error) error

	// ListHoldings retrieves the user's holdings ordered by symbol
	ListHoldings(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// ListTransactions retrieves the user's transactions, newest first
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
}

// QuoteSource resolves symbols to current prices
type QuoteSource interface {
	// Lookup returns a fresh quote for symbol
	// Returns ErrUnknownSymbol when the symbol does not exist and
	// ErrQuoteUnavailable when the source cannot answer right now
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
