package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockfolio-backend/internal/domain"
)

// DefaultStartingCash is credited to every new user
var DefaultStartingCash = decimal.NewFromInt(10000)

// AccountService registers users and resolves API keys
type AccountService struct {
	UserRepo domain.UserRepository

	startingCash decimal.Decimal
	logger       *slog.Logger
	now          func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(userRepo domain.UserRepository, startingCash decimal.Decimal, logger *slog.Logger) *AccountService {
	if startingCash.IsNegative() {
		startingCash = decimal.Zero
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		UserRepo:     userRepo,
		startingCash: startingCash,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates a user with the starting cash and issues its API key
// The returned key is shown once; only its hash is persisted.
func (s *AccountService) Register(ctx context.Context, username string) (*domain.User, string, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, "", err
	}

	apiKey, keyHash, err := GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:         uuid.New(),
		Username:   name,
		Cash:       s.startingCash,
		APIKeyHash: keyHash,
		CreatedAt:  s.now().UTC().Truncate(time.Microsecond),
	}
	if err := user.Validate(); err != nil {
		return nil, "", err
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)

	return user, apiKey, nil
}

// Authenticate resolves an API key to the owning user's ID
// Accepts the raw key or an "Authorization" value of the form "Bearer <key>".
func (s *AccountService) Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error) {
	key := strings.TrimSpace(apiKey)
	if len(key) > len("Bearer ") && strings.EqualFold(key[:len("Bearer ")], "Bearer ") {
		key = strings.TrimSpace(key[len("Bearer "):])
	}
	if key == "" {
		return uuid.Nil, fmt.Errorf("%w: missing API key", domain.ErrUnauthenticated)
	}

	user, err := s.UserRepo.GetByAPIKeyHash(ctx, HashAPIKey(key))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return uuid.Nil, fmt.Errorf("%w: invalid API key", domain.ErrUnauthenticated)
		}
		return uuid.Nil, err
	}

	return user.ID, nil
}
