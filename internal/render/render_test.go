package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/audit"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUSD(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"10000", "$10,000.00"},
		{"0", "$0.00"},
		{"12.5", "$12.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-1000", "-$1,000.00"},
		{"0.005", "$0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, USD(d(tt.amount)))
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"100", "$100.00"},
		{"187.2500", "$187.25"},
		{"333.3333", "$333.3333"},
		{"0.0001", "$0.0001"},
		{"1500.125", "$1,500.125"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(d(tt.amount)))
		})
	}
}

func TestPortfolioMarkdown(t *testing.T) {
	view := &valuation.PortfolioView{
		Cash: d("9000"),
		Holdings: []valuation.Position{
			{Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, UnitPrice: d("100"), LineTotal: d("1000")},
		},
		HoldingsValue: d("1000"),
		NetWorth:      d("10000"),
	}

	md := PortfolioMarkdown(view)

	assert.Contains(t, md, "| AAPL | Apple Inc. | 10 | $100.00 | $1,000.00 |")
	assert.Contains(t, md, "| Cash | $9,000.00 |")
	assert.Contains(t, md, "| **Net worth** | **$10,000.00** |")
}

func TestPortfolioMarkdown_Empty(t *testing.T) {
	md := PortfolioMarkdown(&valuation.PortfolioView{Cash: d("10000"), NetWorth: d("10000")})

	assert.Contains(t, md, "*No holdings.*")
	assert.NotContains(t, md, "| Symbol |")
}

func TestHistoryMarkdown(t *testing.T) {
	at := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	userID := uuid.New()
	txs := []*domain.Transaction{
		domain.NewTransaction(userID, "AAPL", 4, d("125"), domain.TransactionTypeSale, at.Add(time.Hour)),
		domain.NewTransaction(userID, "AAPL", 10, d("100"), domain.TransactionTypePurchase, at),
	}

	md := HistoryMarkdown(txs)

	assert.Contains(t, md, "| 2024-03-01 15:30:00 | SALE | AAPL | 4 | $125.00 | $500.00 |")
	assert.Contains(t, md, "| 2024-03-01 14:30:00 | PURCHASE | AAPL | 10 | $100.00 | -$1,000.00 |")
	assert.Less(t, strings.Index(md, "SALE"), strings.Index(md, "PURCHASE"))

	assert.Contains(t, HistoryMarkdown(nil), "*No transactions.*")
}

func TestTradeMarkdown(t *testing.T) {
	tx := domain.NewTransaction(uuid.New(), "MSFT", 3, d("333.3333"), domain.TransactionTypePurchase, time.Now())

	md := TradeMarkdown(&portfolio.TradeResult{Transaction: tx, Cash: d("9000.0001"), Shares: 3})

	assert.Contains(t, md, "# Bought 3 MSFT")
	assert.Contains(t, md, "| Price | $333.3333 |")
	assert.Contains(t, md, "| Amount | $1,000.00 |")
	assert.Contains(t, md, "| Shares held | 3 |")
	assert.Contains(t, md, tx.ID.String())
}

func TestQuoteAndDepositMarkdown(t *testing.T) {
	md := QuoteMarkdown(&domain.Quote{Symbol: "AAPL", Name: "Apple | Inc.", Price: d("187.25")})
	assert.Contains(t, md, "Apple \\| Inc. costs **$187.25** per share.")

	md = DepositMarkdown(d("250.5"), d("10250.5"))
	assert.Contains(t, md, "Deposited **$250.50**, cash is now **$10,250.50**.")
}

func TestRegistrationMarkdown(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "alice", Cash: d("10000")}

	md := RegistrationMarkdown(user, "sk_live_abc")

	assert.Contains(t, md, "# Welcome, alice")
	assert.Contains(t, md, "**$10,000.00**")
	assert.Contains(t, md, "sk_live_abc")
}

func TestVerifyMarkdown(t *testing.T) {
	ok := &audit.Report{UserID: uuid.New(), Transactions: 2, Holdings: 1}
	assert.Contains(t, VerifyMarkdown(ok), "**OK**")

	bad := &audit.Report{UserID: uuid.New(), Err: errors.New("AAPL: stored 4 shares, transactions give 3")}
	assert.Contains(t, VerifyMarkdown(bad), "**FAILED**: AAPL: stored 4 shares")
}
