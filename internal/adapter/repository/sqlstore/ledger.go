package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// WithinUserTx runs fn inside one database transaction that first locks the
// user's row. Nothing fn writes is visible unless fn returns nil and the
// commit succeeds.
func (s *Store) WithinUserTx(ctx context.Context, userID uuid.UUID, fn func(tx domain.LedgerTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("failed to begin transaction", err)
	}
	defer dbTx.Rollback()

	var cashStr string
	query := `SELECT cash FROM users WHERE id = ?` + s.dialect.LockUserClause()
	if err := dbTx.QueryRowContext(ctx, s.q(query), userID).Scan(&cashStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return s.fail("failed to lock user", err)
	}

	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return fmt.Errorf("failed to parse cash: %w", err)
	}

	if err := fn(&ledgerTx{store: s, tx: dbTx, userID: userID, cash: cash}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return s.fail("failed to commit transaction", err)
	}

	return nil
}

// ledgerTx implements domain.LedgerTx over an open *sql.Tx
type ledgerTx struct {
	store  *Store
	tx     *sql.Tx
	userID uuid.UUID
	cash   decimal.Decimal
}

func (t *ledgerTx) Cash(ctx context.Context) (decimal.Decimal, error) {
	return t.cash, nil
}

func (t *ledgerTx) AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	next := t.cash.Add(delta)
	if next.IsNegative() {
		return t.cash, fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientFunds, delta.Neg(), t.cash)
	}

	_, err := t.tx.ExecContext(ctx, t.store.q(`UPDATE users SET cash = ? WHERE id = ?`), next.String(), t.userID)
	if err != nil {
		return t.cash, t.store.fail("failed to update cash", err)
	}

	t.cash = next
	return next, nil
}

func (t *ledgerTx) Shares(ctx context.Context, symbol string) (int64, error) {
	query := `SELECT shares FROM holdings WHERE user_id = ? AND symbol = ?`

	var shares int64
	err := t.tx.QueryRowContext(ctx, t.store.q(query), t.userID, symbol).Scan(&shares)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, t.store.fail("failed to get holding", err)
	}

	return shares, nil
}

func (t *ledgerTx) ApplyHoldingDelta(ctx context.Context, symbol string, delta int64) (int64, error) {
	current, err := t.Shares(ctx, symbol)
	if err != nil {
		return 0, err
	}

	next, err := domain.ApplyShareDelta(current, delta)
	if err != nil {
		return current, err
	}

	var query string
	var args []any
	switch {
	case next == current:
		return current, nil
	case next == 0:
		query = `DELETE FROM holdings WHERE user_id = ? AND symbol = ?`
		args = []any{t.userID, symbol}
	case current == 0:
		query = `INSERT INTO holdings (user_id, symbol, shares) VALUES (?, ?, ?)`
		args = []any{t.userID, symbol, next}
	default:
		query = `UPDATE holdings SET shares = ? WHERE user_id = ? AND symbol = ?`
		args = []any{next, t.userID, symbol}
	}

	if _, err := t.tx.ExecContext(ctx, t.store.q(query), args...); err != nil {
		return current, t.store.fail("failed to write holding", err)
	}

	return next, nil
}

func (t *ledgerTx) AppendTransaction(ctx context.Context, record *domain.Transaction) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	if record.UserID != t.userID {
		return fmt.Errorf("transaction belongs to user %s, not %s", record.UserID, t.userID)
	}

	query := `
		INSERT INTO transactions (id, user_id, symbol, shares, price, type, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := t.tx.ExecContext(ctx, t.store.q(query),
		record.ID,
		record.UserID,
		record.Symbol,
		record.Shares,
		record.Price.String(),
		string(record.Type),
		record.ExecutedAt.UTC().UnixMicro(),
	)
	if err != nil {
		return t.store.fail("failed to insert transaction", err)
	}

	return nil
}

// ListHoldings retrieves the user's holdings ordered by symbol
func (s *Store) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT user_id, symbol, shares
		FROM holdings
		WHERE user_id = ?
		ORDER BY symbol
	`

	rows, err := s.db.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, s.fail("failed to list holdings", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// ListTransactions retrieves the user's transactions, newest first.
// Ties on execution time fall back to insertion order.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, shares, price, type, executed_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY executed_at DESC, seq DESC
	`

	rows, err := s.db.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, s.fail("failed to list transactions", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var priceStr string
		var txType string
		var executedAt int64

		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Symbol, &tx.Shares, &priceStr, &txType, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		// Parse price (NUMERIC in Postgres, TEXT in SQLite)
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		tx.Price = price
		tx.Type = domain.TransactionType(txType)
		tx.ExecutedAt = time.UnixMicro(executedAt).UTC()

		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
