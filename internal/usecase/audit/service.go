package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// Report summarizes a ledger check
type Report struct {
	UserID       uuid.UUID
	Transactions int
	Holdings     int
	Err          error // nil when the ledger is consistent
}

// OK reports whether the ledger passed every check
func (r *Report) OK() bool { return r.Err == nil }

// AuditService checks that stored holdings and cash agree with the
// transaction log
type AuditService struct {
	UserRepo    domain.UserRepository
	LedgerStore domain.LedgerStore
}

// NewAuditService creates a new AuditService instance
func NewAuditService(userRepo domain.UserRepository, ledgerStore domain.LedgerStore) *AuditService {
	return &AuditService{
		UserRepo:    userRepo,
		LedgerStore: ledgerStore,
	}
}

// Verify replays the user's transactions and compares the result with the
// stored holdings. An inconsistent ledger is reported in Report.Err, not as
// the returned error, which is reserved for failing to read the ledger.
func (s *AuditService) Verify(ctx context.Context, userID uuid.UUID) (*Report, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.LedgerStore.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	transactions, err := s.LedgerStore.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &Report{
		UserID:       userID,
		Transactions: len(transactions),
		Holdings:     len(holdings),
		Err: domain.VerifyLedger(domain.LedgerSnapshot{
			User:         user,
			Holdings:     holdings,
			Transactions: transactions,
		}),
	}, nil
}
