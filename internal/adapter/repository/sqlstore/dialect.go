package sqlstore

// Dialect captures what differs between the SQL engines the ledger runs on.
// Queries in this package are written with '?' placeholders.
type Dialect interface {
	// Name identifies the engine in logs and errors
	Name() string

	// Rebind rewrites '?' placeholders into the engine's native form
	Rebind(query string) string

	// LockUserClause is appended to the user row read that opens a unit of
	// work, e.g. " FOR UPDATE". Engines that serialize writers another way
	// return "".
	LockUserClause() string

	// IsConflict reports whether err means a concurrent writer aborted the
	// statement (serialization failure, deadlock, busy database)
	IsConflict(err error) bool

	// IsUniqueViolation reports whether err is a unique constraint violation
	IsUniqueViolation(err error) bool
}
