package postgres

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// SQLSTATE codes treated as retryable conflicts
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

// Dialect implements sqlstore.Dialect for PostgreSQL via lib/pq
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// Rebind turns '?' placeholders into $1, $2, ...
func (Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// LockUserClause takes a row lock on the user so writers for the same user
// queue behind each other.
func (Dialect) LockUserClause() string { return " FOR UPDATE" }

func (Dialect) IsConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

func (Dialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}
