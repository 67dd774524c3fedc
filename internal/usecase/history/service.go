package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// HistoryService exposes a user's transaction log
type HistoryService struct {
	UserRepo    domain.UserRepository
	LedgerStore domain.LedgerStore
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(userRepo domain.UserRepository, ledgerStore domain.LedgerStore) *HistoryService {
	return &HistoryService{
		UserRepo:    userRepo,
		LedgerStore: ledgerStore,
	}
}

// List returns every transaction of the user, newest first
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	if _, err := s.UserRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	transactions, err := s.LedgerStore.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	return transactions, nil
}
