package domain

import "errors"

// Rejection kinds. Every rejection returned by a usecase wraps exactly one of
// these with a human-readable reason, so callers match with errors.Is.
var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrStorageConflict    = errors.New("storage conflict")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Stable kind names used by the transports.
const (
	KindInvalidQuantity    = "InvalidQuantity"
	KindInvalidAmount      = "InvalidAmount"
	KindUnknownSymbol      = "UnknownSymbol"
	KindInsufficientFunds  = "InsufficientFunds"
	KindInsufficientShares = "InsufficientShares"
	KindQuoteUnavailable   = "QuoteUnavailable"
	KindStorageConflict    = "StorageConflict"
	KindUserNotFound       = "UserNotFound"
	KindUsernameTaken      = "UsernameTaken"
	KindInvalidUsername    = "InvalidUsername"
	KindUnauthenticated    = "Unauthenticated"
	KindInternal           = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidQuantity, KindInvalidQuantity},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrUnknownSymbol, KindUnknownSymbol},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrInsufficientShares, KindInsufficientShares},
	{ErrQuoteUnavailable, KindQuoteUnavailable},
	{ErrStorageConflict, KindStorageConflict},
	{ErrUserNotFound, KindUserNotFound},
	{ErrUsernameTaken, KindUsernameTaken},
	{ErrInvalidUsername, KindInvalidUsername},
	{ErrUnauthenticated, KindUnauthenticated},
}

// ErrorKind returns the kind name of err, or KindInternal when err does not
// wrap one of the rejection kinds. It returns "" for a nil error.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
