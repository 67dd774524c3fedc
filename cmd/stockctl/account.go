package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockfolio-backend/internal/app"
	"github.com/simaogato/stockfolio-backend/internal/render"
)

// registerCmd creates an account and prints its API key.
type registerCmd struct{}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account and print its API key" }
func (*registerCmd) Usage() string {
	return `stockctl register <username>

  Creates an account funded with the configured starting cash.
  The API key is printed once; only its hash is stored.
`
}

func (*registerCmd) SetFlags(f *flag.FlagSet) {}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "register requires exactly one username")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app.App) error {
		user, apiKey, err := a.Services.Accounts.Register(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		printMarkdown(render.RegistrationMarkdown(user, apiKey))
		return nil
	})
}

// depositCmd adds cash to the acting user's account.
type depositCmd struct {
	key string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add cash to the account" }
func (*depositCmd) Usage() string {
	return `stockctl deposit [-key <api key>] <amount>

  Credits a positive amount with at most two decimal places, e.g. 250.50.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) { keyFlag(f, &c.key) }

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "deposit requires exactly one amount")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app.App) error {
		userID, err := authenticate(ctx, a, c.key)
		if err != nil {
			return err
		}
		balance, err := a.Services.Portfolio.DepositCash(ctx, userID, amount)
		if err != nil {
			return err
		}
		printMarkdown(render.DepositMarkdown(amount, balance))
		return nil
	})
}
