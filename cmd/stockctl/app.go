package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/simaogato/stockfolio-backend/internal/app"
	"github.com/simaogato/stockfolio-backend/internal/config"
)

// APIKeyEnvVar holds the default API key for commands acting as a user
const APIKeyEnvVar = "STOCKFOLIO_API_KEY"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the YAML config file (default $"+config.ConfigEnvVar+")")
var plain = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

// openApp loads the configuration and opens the store. Logs go to stderr so
// stdout only carries the report.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	cfg.Log.Format = "text"
	logger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return app.New(ctx, cfg, logger)
}

// keyFlag registers the -key flag shared by commands acting as a user
func keyFlag(f *flag.FlagSet, key *string) {
	f.StringVar(key, "key", os.Getenv(APIKeyEnvVar), "API key of the acting user (default $"+APIKeyEnvVar+")")
}

// authenticate resolves the API key to a user ID
func authenticate(ctx context.Context, a *app.App, key string) (uuid.UUID, error) {
	if key == "" {
		return uuid.Nil, fmt.Errorf("an API key is required: pass -key or set %s", APIKeyEnvVar)
	}
	return a.Services.Accounts.Authenticate(ctx, key)
}

// run opens the application, executes fn and reports its error on stderr.
func run(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw with -plain
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
