package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // pure-Go SQLite driver

	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/sqlstore"
)

//go:embed schema.sql
var schema string

// DB wraps the SQLite connection. A single connection is kept open so every
// unit of work runs strictly one after another.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path (":memory:" for a private in-memory
// database) and configures it for the ledger.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	return &DB{DB: db}, nil
}

// Migrate creates the ledger tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	return sqlstore.Migrate(ctx, db.DB, schema)
}

// NewLedgerStore returns the user and ledger store backed by this database
func (db *DB) NewLedgerStore() *sqlstore.Store {
	return sqlstore.New(db.DB, Dialect{})
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
