// Command stockctl trades and inspects portfolios directly against the configured store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&registerCmd{}, "account")
	commander.Register(&depositCmd{}, "account")

	commander.Register(&quoteCmd{}, "trading")
	commander.Register(&buyCmd{}, "trading")
	commander.Register(&sellCmd{}, "trading")

	commander.Register(&portfolioCmd{}, "reports")
	commander.Register(&historyCmd{}, "reports")
	commander.Register(&verifyCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
