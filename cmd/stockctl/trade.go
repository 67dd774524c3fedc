package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/simaogato/stockfolio-backend/internal/app"
	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/render"
)

// quoteCmd prints the current price of a symbol.
type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "look up the current price of a symbol" }
func (*quoteCmd) Usage() string {
	return `stockctl quote <symbol>
`
}

func (*quoteCmd) SetFlags(f *flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "quote requires exactly one symbol")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app.App) error {
		q, err := a.Services.Quotes.Quote(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		printMarkdown(render.QuoteMarkdown(q))
		return nil
	})
}

// buyCmd and sellCmd share their flags and argument parsing.
type tradeArgs struct {
	key string
}

func (t *tradeArgs) SetFlags(f *flag.FlagSet) { keyFlag(f, &t.key) }

// parse returns the symbol and the unparsed share count from
// `<symbol> <shares>`. The count is checked by domain.ParseQuantity so a bad
// value fails as an invalid quantity, not as a usage error.
func (t *tradeArgs) parse(f *flag.FlagSet) (string, string, bool) {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "expected <symbol> <shares>")
		return "", "", false
	}
	return f.Arg(0), f.Arg(1), true
}

type buyCmd struct{ tradeArgs }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares at the current quote" }
func (*buyCmd) Usage() string {
	return `stockctl buy [-key <api key>] <symbol> <shares>
`
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbol, rawShares, ok := c.parse(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app.App) error {
		shares, err := domain.ParseQuantity(rawShares)
		if err != nil {
			return err
		}
		userID, err := authenticate(ctx, a, c.key)
		if err != nil {
			return err
		}
		result, err := a.Services.Portfolio.Buy(ctx, userID, symbol, shares)
		if err != nil {
			return err
		}
		printMarkdown(render.TradeMarkdown(result))
		return nil
	})
}

type sellCmd struct{ tradeArgs }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell owned shares at the current quote" }
func (*sellCmd) Usage() string {
	return `stockctl sell [-key <api key>] <symbol> <shares>
`
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbol, rawShares, ok := c.parse(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app.App) error {
		shares, err := domain.ParseQuantity(rawShares)
		if err != nil {
			return err
		}
		userID, err := authenticate(ctx, a, c.key)
		if err != nil {
			return err
		}
		result, err := a.Services.Portfolio.Sell(ctx, userID, symbol, shares)
		if err != nil {
			return err
		}
		printMarkdown(render.TradeMarkdown(result))
		return nil
	})
}
