package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// Store is an in-process implementation of domain.UserRepository and
// domain.LedgerStore. Units of work for one user are serialized by that
// user's slot; different users never contend beyond the index lookup.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account
	byName   map[string]uuid.UUID
	byKey    map[string]uuid.UUID
}

var (
	_ domain.UserRepository = (*Store)(nil)
	_ domain.LedgerStore    = (*Store)(nil)
)

type account struct {
	slot chan struct{} // held for the duration of a unit of work

	mu           sync.RWMutex // guards the fields below
	user         domain.User
	holdings     map[string]int64
	transactions []*domain.Transaction // oldest first
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*account),
		byName:   make(map[string]uuid.UUID),
		byKey:    make(map[string]uuid.UUID),
	}
}

// Create creates a new user
func (s *Store) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[user.Username]; ok {
		return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, user.Username)
	}
	if _, ok := s.accounts[user.ID]; ok {
		return fmt.Errorf("failed to create user: id %s already exists", user.ID)
	}

	s.accounts[user.ID] = &account{
		slot:     make(chan struct{}, 1),
		user:     *user,
		holdings: make(map[string]int64),
	}
	s.byName[user.Username] = user.ID
	s.byKey[user.APIKeyHash] = user.ID

	return nil
}

// GetByID retrieves a user by its ID
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	acc, err := s.account(id)
	if err != nil {
		return nil, err
	}

	acc.mu.RLock()
	defer acc.mu.RUnlock()
	user := acc.user
	return &user, nil
}

// GetByAPIKeyHash retrieves the user owning the given API key hash
func (s *Store) GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byKey[keyHash]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no user for API key", domain.ErrUserNotFound)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) account(id uuid.UUID) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return acc, nil
}

// WithinUserTx runs fn with exclusive access to the user's ledger. Writes are
// staged and applied only if fn returns nil.
func (s *Store) WithinUserTx(ctx context.Context, userID uuid.UUID, fn func(tx domain.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	acc, err := s.account(userID)
	if err != nil {
		return err
	}

	select {
	case acc.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-acc.slot }()

	acc.mu.RLock()
	tx := &ledgerTx{
		acc:      acc,
		userID:   userID,
		cash:     acc.user.Cash,
		holdings: make(map[string]int64),
	}
	acc.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	acc.user.Cash = tx.cash
	for symbol, shares := range tx.holdings {
		if shares == 0 {
			delete(acc.holdings, symbol)
		} else {
			acc.holdings[symbol] = shares
		}
	}
	acc.transactions = append(acc.transactions, tx.appended...)

	return nil
}

// ledgerTx stages one unit of work. The owning slot is held, so reads of the
// committed state cannot race with another writer.
type ledgerTx struct {
	acc      *account
	userID   uuid.UUID
	cash     decimal.Decimal
	holdings map[string]int64 // staged share counts, 0 means delete
	appended []*domain.Transaction
}

func (t *ledgerTx) Cash(ctx context.Context) (decimal.Decimal, error) {
	return t.cash, nil
}

func (t *ledgerTx) AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	next := t.cash.Add(delta)
	if next.IsNegative() {
		return t.cash, fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientFunds, delta.Neg(), t.cash)
	}
	t.cash = next
	return next, nil
}

func (t *ledgerTx) Shares(ctx context.Context, symbol string) (int64, error) {
	if shares, ok := t.holdings[symbol]; ok {
		return shares, nil
	}
	t.acc.mu.RLock()
	defer t.acc.mu.RUnlock()
	return t.acc.holdings[symbol], nil
}

func (t *ledgerTx) ApplyHoldingDelta(ctx context.Context, symbol string, delta int64) (int64, error) {
	current, _ := t.Shares(ctx, symbol)
	next, err := domain.ApplyShareDelta(current, delta)
	if err != nil {
		return current, err
	}
	t.holdings[symbol] = next
	return next, nil
}

func (t *ledgerTx) AppendTransaction(ctx context.Context, record *domain.Transaction) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	if record.UserID != t.userID {
		return fmt.Errorf("transaction belongs to user %s, not %s", record.UserID, t.userID)
	}
	stored := *record
	t.appended = append(t.appended, &stored)
	return nil
}

// ListHoldings retrieves the user's holdings ordered by symbol
func (s *Store) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	acc, err := s.account(userID)
	if err != nil {
		return nil, err
	}

	acc.mu.RLock()
	defer acc.mu.RUnlock()

	holdings := make([]*domain.Holding, 0, len(acc.holdings))
	for symbol, shares := range acc.holdings {
		holdings = append(holdings, &domain.Holding{UserID: userID, Symbol: symbol, Shares: shares})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return holdings, nil
}

// ListTransactions retrieves the user's transactions, newest first.
// Ties on execution time keep reverse insertion order.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	acc, err := s.account(userID)
	if err != nil {
		return nil, err
	}

	acc.mu.RLock()
	defer acc.mu.RUnlock()

	n := len(acc.transactions)
	out := make([]*domain.Transaction, n)
	for i, tx := range acc.transactions {
		copied := *tx
		out[n-1-i] = &copied
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExecutedAt.After(out[j].ExecutedAt) })

	return out, nil
}
