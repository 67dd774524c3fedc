package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/simaogato/stockfolio-backend/internal/adapter/repository/sqlstore"
)

//go:embed schema.sql
var schema string

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=stockfolio sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
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
