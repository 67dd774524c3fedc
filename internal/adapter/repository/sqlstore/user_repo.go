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

// Create creates a new user
func (s *Store) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, cash, api_key_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		user.ID,
		user.Username,
		user.Cash.String(),
		user.APIKeyHash,
		user.CreatedAt.UTC().UnixMicro(),
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, user.Username)
		}
		return s.fail("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by its ID
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, cash, api_key_hash, created_at
		FROM users
		WHERE id = ?
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByAPIKeyHash retrieves the user owning the given API key hash
func (s *Store) GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	query := `
		SELECT id, username, cash, api_key_hash, created_at
		FROM users
		WHERE api_key_hash = ?
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, s.q(query), keyHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user for API key", domain.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by API key: %w", err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var cashStr string
	var createdAt int64

	if err := row.Scan(&user.ID, &user.Username, &cashStr, &user.APIKeyHash, &createdAt); err != nil {
		return nil, err
	}

	// Parse cash (NUMERIC in Postgres, TEXT in SQLite)
	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cash: %w", err)
	}
	user.Cash = cash
	user.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &user, nil
}
