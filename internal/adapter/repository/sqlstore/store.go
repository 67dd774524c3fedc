package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// Store implements domain.UserRepository and domain.LedgerStore on top of a
// database/sql handle.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ domain.UserRepository = (*Store)(nil)
	_ domain.LedgerStore    = (*Store)(nil)
)

// New creates a store over db using the given dialect
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate executes every statement of schema in order.
// Statements are separated by ';' and must be idempotent.
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// fail wraps err with msg, marking engine-level conflicts as
// domain.ErrStorageConflict so callers can retry.
func (s *Store) fail(msg string, err error) error {
	if s.dialect.IsConflict(err) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrStorageConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
