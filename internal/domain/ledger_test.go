package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(userID uuid.UUID, symbol string, shares int64, txType TransactionType, at time.Time) *Transaction {
	return NewTransaction(userID, symbol, shares, decimal.NewFromInt(10), txType, at)
}

func TestReplayHoldings(t *testing.T) {
	userID := uuid.New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	log := []*Transaction{
		trade(userID, "AAPL", 5, TransactionTypePurchase, t0),
		trade(userID, "MSFT", 2, TransactionTypePurchase, t0.Add(time.Minute)),
		trade(userID, "AAPL", 3, TransactionTypeSale, t0.Add(2*time.Minute)),
		trade(userID, "MSFT", 2, TransactionTypeSale, t0.Add(3*time.Minute)),
	}

	holdings, err := ReplayHoldings(log)

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"AAPL": 2}, holdings)
}

func TestReplayHoldings_OversellPrefix(t *testing.T) {
	userID := uuid.New()
	t0 := time.Now()

	log := []*Transaction{
		trade(userID, "AAPL", 1, TransactionTypeSale, t0),
		trade(userID, "AAPL", 1, TransactionTypePurchase, t0.Add(time.Second)),
	}

	_, err := ReplayHoldings(log)

	assert.True(t, errors.Is(err, ErrLedgerInconsistent))
}

func TestVerifyLedger(t *testing.T) {
	userID := uuid.New()
	t0 := time.Now()
	user := &User{ID: userID, Username: "alice", Cash: decimal.NewFromInt(500), APIKeyHash: "h"}

	// newest first, as the store returns them
	history := []*Transaction{
		trade(userID, "AAPL", 2, TransactionTypeSale, t0.Add(time.Minute)),
		trade(userID, "AAPL", 5, TransactionTypePurchase, t0),
	}

	tests := []struct {
		name     string
		user     *User
		holdings []*Holding
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "Holdings equal to replay should pass",
			user:     user,
			holdings: []*Holding{{UserID: userID, Symbol: "AAPL", Shares: 3}},
		},
		{
			name:     "Stored count drifted from replay should fail",
			user:     user,
			holdings: []*Holding{{UserID: userID, Symbol: "AAPL", Shares: 4}},
			wantErr:  true,
			errMsg:   "AAPL: stored 4 shares, transactions give 3",
		},
		{
			name:     "Missing holding row should fail",
			user:     user,
			holdings: nil,
			wantErr:  true,
			errMsg:   "AAPL: stored 0 shares",
		},
		{
			name: "Zero-share holding row should fail",
			user: user,
			holdings: []*Holding{
				{UserID: userID, Symbol: "AAPL", Shares: 3},
				{UserID: userID, Symbol: "MSFT", Shares: 0},
			},
			wantErr: true,
			errMsg:  "holding MSFT has non-positive shares",
		},
		{
			name:     "Negative cash should fail",
			user:     &User{ID: userID, Cash: decimal.NewFromInt(-1)},
			holdings: []*Holding{{UserID: userID, Symbol: "AAPL", Shares: 3}},
			wantErr:  true,
			errMsg:   "cash is negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyLedger(LedgerSnapshot{User: tt.user, Holdings: tt.holdings, Transactions: history})
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrLedgerInconsistent))
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyShareDelta(t *testing.T) {
	next, err := ApplyShareDelta(5, -5)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), next)

	next, err = ApplyShareDelta(0, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), next)

	next, err = ApplyShareDelta(2, -3)
	assert.True(t, errors.Is(err, ErrInsufficientShares))
	assert.Equal(t, int64(2), next)

	next, err = ApplyShareDelta(math.MaxInt64-1, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), next)

	next, err = ApplyShareDelta(math.MaxInt64, 1)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
	assert.Equal(t, int64(math.MaxInt64), next)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
		errMsg  string
	}{
		{raw: "10", want: 10},
		{raw: `"2"`, want: 2},
		{raw: " 7 ", want: 7},
		{raw: "3.0", want: 3},
		{raw: "9223372036854775807", want: math.MaxInt64},
		{raw: "1.5", wantErr: true, errMsg: "whole number"},
		{raw: `"abc"`, wantErr: true, errMsg: "not a number"},
		{raw: "abc", wantErr: true, errMsg: "not a number"},
		{raw: "1e30", wantErr: true, errMsg: "out of range"},
		{raw: "-1e30", wantErr: true, errMsg: "out of range"},
		{raw: "9223372036854775808", wantErr: true, errMsg: "out of range"},
		{raw: "0", wantErr: true, errMsg: "positive"},
		{raw: "-3", wantErr: true, errMsg: "positive"},
		{raw: "", wantErr: true, errMsg: "required"},
		{raw: "null", wantErr: true, errMsg: "required"},
		{raw: "true", wantErr: true, errMsg: "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidQuantity), "got %v", err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, shares := range []int64{0, -3} {
		assert.True(t, errors.Is(ValidateQuantity(shares), ErrInvalidQuantity), "shares=%d", shares)
	}
	assert.NoError(t, ValidateQuantity(1))
}

func TestValidateDeposit(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"100", false},
		{"0.01", false},
		{"12.50", false},
		{"0", false},
		{"-5", true},
		{"1.005", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateDeposit(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAmount))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, KindInsufficientFunds, ErrorKind(fmt.Errorf("%w: need 100", ErrInsufficientFunds)))
	assert.Equal(t, KindStorageConflict, ErrorKind(fmt.Errorf("commit: %w", ErrStorageConflict)))
	assert.Equal(t, KindInternal, ErrorKind(errors.New("disk on fire")))
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
}
