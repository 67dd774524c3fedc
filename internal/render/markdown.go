// Package render turns ledger views into markdown documents for the CLI.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/audit"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

const timeLayout = "2006-01-02 15:04:05"

// PortfolioMarkdown renders holdings with their market value, then cash and net worth.
func PortfolioMarkdown(view *valuation.PortfolioView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio\n\n")

	if len(view.Holdings) == 0 {
		fmt.Fprintf(&b, "*No holdings.*\n\n")
	} else {
		fmt.Fprintln(&b, "| Symbol | Name | Shares | Price | Total |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
		for _, p := range view.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				p.Symbol,
				escape(p.Name),
				p.Shares,
				Price(p.UnitPrice),
				USD(p.LineTotal),
			)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Holdings | %s |\n", USD(view.HoldingsValue))
	fmt.Fprintf(&b, "| Cash | %s |\n", USD(view.Cash))
	fmt.Fprintf(&b, "| **Net worth** | **%s** |\n", USD(view.NetWorth))
	return b.String()
}

// HistoryMarkdown renders transactions in the order given (newest first from the store).
func HistoryMarkdown(txs []*domain.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# History\n\n")

	if len(txs) == 0 {
		fmt.Fprintf(&b, "*No transactions.*\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Executed | Type | Symbol | Shares | Price | Amount |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			tx.ExecutedAt.UTC().Format(timeLayout),
			tx.Type,
			tx.Symbol,
			tx.Shares,
			Price(tx.Price),
			USD(tx.CashDelta()),
		)
	}
	return b.String()
}

// QuoteMarkdown renders a single quote.
func QuoteMarkdown(q *domain.Quote) string {
	return fmt.Sprintf("# %s\n\n%s costs **%s** per share.\n", q.Symbol, escape(q.Name), Price(q.Price))
}

// TradeMarkdown renders the confirmation of a buy or sell.
func TradeMarkdown(res *portfolio.TradeResult) string {
	tx := res.Transaction
	verb := "Bought"
	if tx.Type == domain.TransactionTypeSale {
		verb = "Sold"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %d %s\n\n", verb, tx.Shares, tx.Symbol)
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Price | %s |\n", Price(tx.Price))
	fmt.Fprintf(&b, "| Amount | %s |\n", USD(tx.Amount()))
	fmt.Fprintf(&b, "| Shares held | %d |\n", res.Shares)
	fmt.Fprintf(&b, "| Cash | %s |\n", USD(res.Cash))
	fmt.Fprintf(&b, "\n*Transaction %s at %s*\n", tx.ID, tx.ExecutedAt.UTC().Format(timeLayout))
	return b.String()
}

// DepositMarkdown renders the confirmation of a cash deposit.
func DepositMarkdown(amount, balance decimal.Decimal) string {
	return fmt.Sprintf("# Deposit\n\nDeposited **%s**, cash is now **%s**.\n", USD(amount), USD(balance))
}

// RegistrationMarkdown renders a new account and its API key.
// The key is shown once; only its hash is stored.
func RegistrationMarkdown(user *domain.User, apiKey string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Welcome, %s\n\n", escape(user.Username))
	fmt.Fprintf(&b, "Starting cash: **%s**\n\n", USD(user.Cash))
	fmt.Fprintf(&b, "API key (shown once, keep it safe):\n\n```\n%s\n```\n", apiKey)
	return b.String()
}

// VerifyMarkdown renders the result of a ledger audit.
func VerifyMarkdown(r *audit.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ledger audit\n\n")
	fmt.Fprintf(&b, "User `%s`: %d transactions, %d holdings.\n\n", r.UserID, r.Transactions, r.Holdings)
	if r.OK() {
		fmt.Fprintf(&b, "**OK**: holdings match the transaction log and cash is not negative.\n")
	} else {
		fmt.Fprintf(&b, "**FAILED**: %s\n", escape(r.Err.Error()))
	}
	return b.String()
}

// escape keeps free text from breaking table cells
func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
