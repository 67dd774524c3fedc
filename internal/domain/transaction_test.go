package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Symbol:     "AAPL",
		Shares:     5,
		Price:      decimal.RequireFromString("100.00"),
		Type:       TransactionTypePurchase,
		ExecutedAt: time.Now(),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Purchase with positive shares and price should pass",
			mutate:  func(tx *Transaction) {},
			wantErr: false,
		},
		{
			name:    "Sale should pass",
			mutate:  func(tx *Transaction) { tx.Type = TransactionTypeSale },
			wantErr: false,
		},
		{
			name:    "Zero shares should fail",
			mutate:  func(tx *Transaction) { tx.Shares = 0 },
			wantErr: true,
			errMsg:  "shares must be positive",
		},
		{
			name:    "Negative shares should fail",
			mutate:  func(tx *Transaction) { tx.Shares = -3 },
			wantErr: true,
			errMsg:  "shares must be positive",
		},
		{
			name:    "Zero price should fail",
			mutate:  func(tx *Transaction) { tx.Price = decimal.Zero },
			wantErr: true,
			errMsg:  "price must be positive",
		},
		{
			name:    "Unknown type should fail",
			mutate:  func(tx *Transaction) { tx.Type = "DIVIDEND" },
			wantErr: true,
			errMsg:  "type must be PURCHASE or SALE",
		},
		{
			name:    "Missing symbol should fail",
			mutate:  func(tx *Transaction) { tx.Symbol = "" },
			wantErr: true,
			errMsg:  "symbol is required",
		},
		{
			name:    "Missing user should fail",
			mutate:  func(tx *Transaction) { tx.UserID = uuid.Nil },
			wantErr: true,
			errMsg:  "user ID is required",
		},
		{
			name:    "Missing execution time should fail",
			mutate:  func(tx *Transaction) { tx.ExecutedAt = time.Time{} },
			wantErr: true,
			errMsg:  "execution time is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_SignedAmounts(t *testing.T) {
	purchase := validTransaction()
	assert.Equal(t, int64(5), purchase.SignedShares())
	assert.True(t, decimal.RequireFromString("500").Equal(purchase.Amount()))
	assert.True(t, decimal.RequireFromString("-500").Equal(purchase.CashDelta()))

	sale := validTransaction()
	sale.Type = TransactionTypeSale
	assert.Equal(t, int64(-5), sale.SignedShares())
	assert.True(t, decimal.RequireFromString("500").Equal(sale.CashDelta()))
}

func TestNewTransaction(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tx := NewTransaction(userID, "MSFT", 2, decimal.NewFromInt(300), TransactionTypeSale, at)

	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.Equal(t, userID, tx.UserID)
	assert.Equal(t, "MSFT", tx.Symbol)
	assert.Equal(t, int64(2), tx.Shares)
	assert.Equal(t, at, tx.ExecutedAt)
	assert.NoError(t, tx.Validate())
}
