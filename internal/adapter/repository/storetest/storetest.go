// Package storetest holds the behavioral suite every ledger store must pass.
package storetest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// Store is what the suite needs from an implementation
type Store interface {
	domain.UserRepository
	domain.LedgerStore
}

// Factory returns a fresh, empty store for one subtest
type Factory func(t *testing.T) Store

// Run executes the whole suite against stores produced by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("UnknownUser", func(t *testing.T) { testUnknownUser(t, newStore(t)) })
	t.Run("CommitAppliesEverything", func(t *testing.T) { testCommit(t, newStore(t)) })
	t.Run("FailedUnitLeavesNoTrace", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("HoldingDeltaPrimitive", func(t *testing.T) { testHoldingDelta(t, newStore(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, newStore(t)) })
	t.Run("ConcurrentUnitsSerialize", func(t *testing.T) { testConcurrentUnits(t, newStore(t)) })
}

// NewUser registers a user with the given cash and returns it
func NewUser(t *testing.T, users domain.UserRepository, username, cash string) *domain.User {
	t.Helper()

	sum := sha256.Sum256([]byte(uuid.NewString()))
	user := &domain.User{
		ID:         uuid.New(),
		Username:   username,
		Cash:       decimal.RequireFromString(cash),
		APIKeyHash: hex.EncodeToString(sum[:]),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func at(minute int) time.Time {
	return time.Date(2024, 3, 1, 9, minute, 0, 0, time.UTC)
}

// trade performs a purchase or sale the way the engine does
func trade(ctx context.Context, tx domain.LedgerTx, record *domain.Transaction) error {
	if _, err := tx.AdjustCash(ctx, record.CashDelta()); err != nil {
		return err
	}
	if _, err := tx.ApplyHoldingDelta(ctx, record.Symbol, record.SignedShares()); err != nil {
		return err
	}
	return tx.AppendTransaction(ctx, record)
}

func testUsers(t *testing.T, store Store) {
	ctx := context.Background()
	alice := NewUser(t, store, "alice", "10000.00")

	got, err := store.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Cash.Equal(decimal.NewFromInt(10000)), "cash: %s", got.Cash)
	assert.True(t, got.CreatedAt.Equal(alice.CreatedAt))

	byKey, err := store.GetByAPIKeyHash(ctx, alice.APIKeyHash)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byKey.ID)

	dup := *alice
	dup.ID = uuid.New()
	dup.APIKeyHash = "other"
	err = store.Create(ctx, &dup)
	assert.True(t, errors.Is(err, domain.ErrUsernameTaken), "got %v", err)

	_, err = store.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrUserNotFound), "got %v", err)

	_, err = store.GetByAPIKeyHash(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound), "got %v", err)
}

func testUnknownUser(t *testing.T, store Store) {
	called := false
	err := store.WithinUserTx(context.Background(), uuid.New(), func(tx domain.LedgerTx) error {
		called = true
		return nil
	})

	assert.True(t, errors.Is(err, domain.ErrUserNotFound), "got %v", err)
	assert.False(t, called)
}

func testCommit(t *testing.T, store Store) {
	ctx := context.Background()
	user := NewUser(t, store, "bob", "1000.00")
	buy := domain.NewTransaction(user.ID, "AAPL", 5, decimal.RequireFromString("100.00"), domain.TransactionTypePurchase, at(0))

	err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		return trade(ctx, tx, buy)
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("500.00")), "cash: %s", got.Cash)

	holdings, err := store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, int64(5), holdings[0].Shares)

	history, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, buy.ID, history[0].ID)
	assert.Equal(t, domain.TransactionTypePurchase, history[0].Type)
	assert.True(t, history[0].Price.Equal(buy.Price))
	assert.True(t, history[0].ExecutedAt.Equal(buy.ExecutedAt))

	sell := domain.NewTransaction(user.ID, "AAPL", 5, decimal.RequireFromString("120.00"), domain.TransactionTypeSale, at(1))
	err = store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		return trade(ctx, tx, sell)
	})
	require.NoError(t, err)

	got, err = store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("1100.00")), "cash: %s", got.Cash)

	holdings, err = store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings, "a holding at zero must be removed")

	history, err = store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.NoError(t, domain.VerifyLedger(domain.LedgerSnapshot{User: got, Holdings: holdings, Transactions: history}))
}

func testRollback(t *testing.T, store Store) {
	ctx := context.Background()
	user := NewUser(t, store, "carol", "50.00")
	boom := errors.New("boom")

	// cash and holding written, then the unit fails
	err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		if _, err := tx.AdjustCash(ctx, decimal.NewFromInt(-10)); err != nil {
			return err
		}
		if _, err := tx.ApplyHoldingDelta(ctx, "MSFT", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// over-spending is refused by the primitive
	err = store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		_, err := tx.AdjustCash(ctx, decimal.NewFromInt(-100))
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds), "got %v", err)

	got, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("50.00")), "cash: %s", got.Cash)

	holdings, err := store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	history, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func testHoldingDelta(t *testing.T, store Store) {
	ctx := context.Background()
	user := NewUser(t, store, "dave", "0")

	err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		shares, err := tx.Shares(ctx, "TSLA")
		require.NoError(t, err)
		assert.Equal(t, int64(0), shares, "absent holding reads as zero")

		next, err := tx.ApplyHoldingDelta(ctx, "TSLA", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), next)

		next, err = tx.ApplyHoldingDelta(ctx, "TSLA", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), next)

		_, err = tx.ApplyHoldingDelta(ctx, "TSLA", -6)
		assert.True(t, errors.Is(err, domain.ErrInsufficientShares), "got %v", err)

		shares, err = tx.Shares(ctx, "TSLA")
		require.NoError(t, err)
		assert.Equal(t, int64(5), shares, "refused delta must not change the holding")
		return nil
	})
	require.NoError(t, err)

	err = store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		next, err := tx.ApplyHoldingDelta(ctx, "TSLA", -5)
		require.NoError(t, err)
		assert.Equal(t, int64(0), next)
		return nil
	})
	require.NoError(t, err)

	holdings, err := store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func testOrdering(t *testing.T, store Store) {
	ctx := context.Background()
	user := NewUser(t, store, "erin", "100000")
	price := decimal.NewFromInt(10)

	records := []*domain.Transaction{
		domain.NewTransaction(user.ID, "MSFT", 1, price, domain.TransactionTypePurchase, at(0)),
		domain.NewTransaction(user.ID, "AAPL", 1, price, domain.TransactionTypePurchase, at(5)),
		// same timestamp as the previous one; insertion order breaks the tie
		domain.NewTransaction(user.ID, "GOOG", 1, price, domain.TransactionTypePurchase, at(5)),
		domain.NewTransaction(user.ID, "AAPL", 1, price, domain.TransactionTypePurchase, at(9)),
	}
	for _, record := range records {
		err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
			return trade(ctx, tx, record)
		})
		require.NoError(t, err)
	}

	history, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, records[3].ID, history[0].ID)
	assert.Equal(t, records[2].ID, history[1].ID)
	assert.Equal(t, records[1].ID, history[2].ID)
	assert.Equal(t, records[0].ID, history[3].ID)

	holdings, err := store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, int64(2), holdings[0].Shares)
	assert.Equal(t, "GOOG", holdings[1].Symbol)
	assert.Equal(t, "MSFT", holdings[2].Symbol)

	// another user's ledger is independent
	other := NewUser(t, store, "frank", "0")
	otherHistory, err := store.ListTransactions(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherHistory)
}

func testConcurrentUnits(t *testing.T, store Store) {
	ctx := context.Background()
	user := NewUser(t, store, "grace", "0")
	const owned, sellers = 3, 8

	err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
		_, err := tx.ApplyHoldingDelta(ctx, "NFLX", owned)
		return err
	})
	require.NoError(t, err)

	var ok, refused atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinUserTx(ctx, user.ID, func(tx domain.LedgerTx) error {
				shares, err := tx.Shares(ctx, "NFLX")
				if err != nil {
					return err
				}
				if shares < 1 {
					return domain.ErrInsufficientShares
				}
				_, err = tx.ApplyHoldingDelta(ctx, "NFLX", -1)
				return err
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientShares):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(owned), ok.Load())
	assert.Equal(t, int32(sellers-owned), refused.Load())

	holdings, err := store.ListHoldings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}
