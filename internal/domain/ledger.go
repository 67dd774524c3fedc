package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrLedgerInconsistent reports that stored state disagrees with the
// transaction log.
var ErrLedgerInconsistent = errors.New("ledger inconsistent")

// ReplayHoldings folds transactions, oldest first, into per-symbol share
// counts. Symbols that net to zero are omitted. It fails if any prefix of the
// log would leave a holding negative.
func ReplayHoldings(oldestFirst []*Transaction) (map[string]int64, error) {
	shares := make(map[string]int64)
	for _, tx := range oldestFirst {
		next, err := ApplyShareDelta(shares[tx.Symbol], tx.SignedShares())
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %s on %s: %v", ErrLedgerInconsistent, tx.ID, tx.Symbol, err)
		}
		if next == 0 {
			delete(shares, tx.Symbol)
			continue
		}
		shares[tx.Symbol] = next
	}
	return shares, nil
}

// LedgerSnapshot is everything stored for one user.
type LedgerSnapshot struct {
	User         *User
	Holdings     []*Holding
	Transactions []*Transaction // newest first, as returned by the store
}

// VerifyLedger checks the snapshot against the invariants: non-negative cash,
// positive holdings only, and holdings equal to the replayed transaction log.
func VerifyLedger(s LedgerSnapshot) error {
	var problems []string

	if s.User != nil && s.User.Cash.IsNegative() {
		problems = append(problems, fmt.Sprintf("cash is negative: %s", s.User.Cash))
	}

	oldestFirst := make([]*Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		oldestFirst[len(s.Transactions)-1-i] = tx
	}
	expected, err := ReplayHoldings(oldestFirst)
	if err != nil {
		return err
	}

	stored := make(map[string]int64, len(s.Holdings))
	for _, h := range s.Holdings {
		if h.Shares <= 0 {
			problems = append(problems, fmt.Sprintf("holding %s has non-positive shares %d", h.Symbol, h.Shares))
		}
		stored[h.Symbol] = h.Shares
	}

	symbols := make(map[string]struct{})
	for sym := range expected {
		symbols[sym] = struct{}{}
	}
	for sym := range stored {
		symbols[sym] = struct{}{}
	}
	sorted := make([]string, 0, len(symbols))
	for sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Strings(sorted)

	for _, sym := range sorted {
		if expected[sym] != stored[sym] {
			problems = append(problems, fmt.Sprintf("%s: stored %d shares, transactions give %d", sym, stored[sym], expected[sym]))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrLedgerInconsistent, strings.Join(problems, "; "))
	}
	return nil
}
