package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
)

// seedNamespace derives stable IDs for seeded accounts from their usernames
var seedNamespace = uuid.MustParse("6f1c3a52-7d0e-4b8a-9c55-2f4e8b1d0a01")

// AccountSeed describes a fixture account with a known API key
type AccountSeed struct {
	Username string
	APIKey   string
	Cash     decimal.Decimal
}

// SeedID returns the ID a seeded account with username is created with
func SeedID(username string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(username))
}

// AccountSeeder makes sure fixture accounts exist
type AccountSeeder struct {
	repo   domain.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountSeeder creates a new AccountSeeder instance
func NewAccountSeeder(repo domain.UserRepository, logger *slog.Logger) *AccountSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountSeeder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Seed creates every account in seeds whose API key is not known yet.
// Accounts that already exist are left untouched, so seeding twice is safe
// and never resets cash a fixture user has spent.
func (s *AccountSeeder) Seed(ctx context.Context, seeds []AccountSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		if seed.APIKey == "" {
			return created, fmt.Errorf("seed account %q has no API key", seed.Username)
		}
		keyHash := account.HashAPIKey(seed.APIKey)

		_, err := s.repo.GetByAPIKeyHash(ctx, keyHash)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return created, fmt.Errorf("failed to look up seed account %q: %w", seed.Username, err)
		}

		name, err := domain.NormalizeUsername(seed.Username)
		if err != nil {
			return created, err
		}
		user := &domain.User{
			ID:         SeedID(name),
			Username:   name,
			Cash:       seed.Cash,
			APIKeyHash: keyHash,
			CreatedAt:  s.now().UTC().Truncate(time.Microsecond),
		}
		if err := user.Validate(); err != nil {
			return created, fmt.Errorf("seed account %q: %w", name, err)
		}

		if err := s.repo.Create(ctx, user); err != nil {
			return created, fmt.Errorf("failed to create seed account %q: %w", name, err)
		}
		created++
		s.logger.Info("seed account created",
			slog.String("user_id", user.ID.String()),
			slog.String("username", name),
		)
	}

	return created, nil
}
