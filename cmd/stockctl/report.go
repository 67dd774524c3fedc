package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/simaogato/stockfolio-backend/internal/app"
	"github.com/simaogato/stockfolio-backend/internal/render"
)

// portfolioCmd values the holdings at current quotes.
type portfolioCmd struct {
	key string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display holdings, cash and net worth" }
func (*portfolioCmd) Usage() string {
	return `stockctl portfolio [-key <api key>]

  Values every holding at its current quote. Fails without a partial report
  when any quote is unavailable.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) { keyFlag(f, &c.key) }

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app.App) error {
		userID, err := authenticate(ctx, a, c.key)
		if err != nil {
			return err
		}
		view, err := a.Services.Valuation.Summarize(ctx, userID)
		if err != nil {
			return err
		}
		printMarkdown(render.PortfolioMarkdown(view))
		return nil
	})
}

// historyCmd lists executed trades.
type historyCmd struct {
	key string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list executed trades, newest first" }
func (*historyCmd) Usage() string {
	return `stockctl history [-key <api key>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) { keyFlag(f, &c.key) }

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app.App) error {
		userID, err := authenticate(ctx, a, c.key)
		if err != nil {
			return err
		}
		txs, err := a.Services.History.List(ctx, userID)
		if err != nil {
			return err
		}
		printMarkdown(render.HistoryMarkdown(txs))
		return nil
	})
}

// verifyCmd audits a ledger: stored holdings must equal the replayed
// transaction log and cash must not be negative.
type verifyCmd struct {
	key  string
	user string
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "check holdings and cash against the transaction log" }
func (*verifyCmd) Usage() string {
	return `stockctl verify [-key <api key> | -user <user id>]

  Exits with status 1 when the ledger is inconsistent.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	keyFlag(f, &c.key)
	f.StringVar(&c.user, "user", "", "User ID to audit (operators; takes precedence over -key)")
}

func (c *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var userID uuid.UUID
	if c.user != "" {
		id, err := uuid.Parse(c.user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing user ID: %v\n", err)
			return subcommands.ExitUsageError
		}
		userID = id
	}

	consistent := true
	status := run(ctx, func(a *app.App) error {
		if userID == uuid.Nil {
			id, err := authenticate(ctx, a, c.key)
			if err != nil {
				return err
			}
			userID = id
		}
		report, err := a.Services.Audit.Verify(ctx, userID)
		if err != nil {
			return err
		}
		printMarkdown(render.VerifyMarkdown(report))
		consistent = report.OK()
		return nil
	})
	if status == subcommands.ExitSuccess && !consistent {
		return subcommands.ExitFailure
	}
	return status
}
