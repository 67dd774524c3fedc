package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var (
	aliceSeed = AccountSeed{Username: "alice", APIKey: "sk_live_alice", Cash: decimal.RequireFromString("5000.00")}
	bobSeed   = AccountSeed{Username: "bob", APIKey: "sk_live_bob", Cash: decimal.RequireFromString("250.50")}
)

func TestAccountSeeder_Seed_AccountsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	mockRepo.On("GetByAPIKeyHash", ctx, account.HashAPIKey(aliceSeed.APIKey)).Return(nil, domain.ErrUserNotFound)
	mockRepo.On("GetByAPIKeyHash", ctx, account.HashAPIKey(bobSeed.APIKey)).Return(nil, domain.ErrUserNotFound)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.ID == SeedID("alice") &&
			user.Username == "alice" &&
			user.APIKeyHash == account.HashAPIKey("sk_live_alice") &&
			user.Cash.Equal(decimal.NewFromInt(5000))
	})).Return(nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.ID == SeedID("bob") && user.Cash.Equal(decimal.RequireFromString("250.5"))
	})).Return(nil)

	created, err := seeder.Seed(ctx, []AccountSeed{aliceSeed, bobSeed})

	assert.NoError(t, err)
	assert.Equal(t, 2, created)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestAccountSeeder_Seed_AccountsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	mockRepo.On("GetByAPIKeyHash", ctx, account.HashAPIKey(aliceSeed.APIKey)).
		Return(&domain.User{ID: SeedID("alice"), Username: "alice", Cash: decimal.NewFromInt(12)}, nil)
	mockRepo.On("GetByAPIKeyHash", ctx, account.HashAPIKey(bobSeed.APIKey)).Return(nil, domain.ErrUserNotFound)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.Username == "bob"
	})).Return(nil)

	created, err := seeder.Seed(ctx, []AccountSeed{aliceSeed, bobSeed})

	assert.NoError(t, err)
	assert.Equal(t, 1, created)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAccountSeeder_Seed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		seed    AccountSeed
		setup   func(m *MockUserRepository)
		wantErr error
		errMsg  string
	}{
		{
			name:   "Missing API key",
			seed:   AccountSeed{Username: "carol", Cash: decimal.Zero},
			setup:  func(m *MockUserRepository) {},
			errMsg: "has no API key",
		},
		{
			name: "Lookup failure",
			seed: aliceSeed,
			setup: func(m *MockUserRepository) {
				m.On("GetByAPIKeyHash", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
		{
			name: "Invalid username",
			seed: AccountSeed{Username: "   ", APIKey: "sk_live_x", Cash: decimal.Zero},
			setup: func(m *MockUserRepository) {
				m.On("GetByAPIKeyHash", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
			},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name: "Negative cash",
			seed: AccountSeed{Username: "dave", APIKey: "sk_live_dave", Cash: decimal.NewFromInt(-1)},
			setup: func(m *MockUserRepository) {
				m.On("GetByAPIKeyHash", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
			},
			errMsg: "cash cannot be negative",
		},
		{
			name: "Username held by another key",
			seed: aliceSeed,
			setup: func(m *MockUserRepository) {
				m.On("GetByAPIKeyHash", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUsernameTaken)
			},
			wantErr: domain.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setup(mockRepo)
			seeder := NewAccountSeeder(mockRepo, nil)

			created, err := seeder.Seed(context.Background(), []AccountSeed{tt.seed})

			require.Error(t, err)
			assert.Equal(t, 0, created)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestSeedID_Stable(t *testing.T) {
	assert.Equal(t, SeedID("alice"), SeedID("alice"))
	assert.NotEqual(t, SeedID("alice"), SeedID("bob"))
}
