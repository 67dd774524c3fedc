package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	grpclib "google.golang.org/grpc"

	grpcadapter "github.com/simaogato/stockfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/stockfolio-backend/internal/adapter/handler"
	"github.com/simaogato/stockfolio-backend/internal/app"
	"github.com/simaogato/stockfolio-backend/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default $"+config.ConfigEnvVar+")")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Setup Logger
	logger, err := app.NewLogger(cfg, os.Stdout)
	if err != nil {
		slog.Error("Failed to create logger", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// 3. Open the store and build the services
	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()
	svc := a.Services

	// 4. Start gRPC Server
	grpcServer := grpcadapter.NewGRPCServer(
		grpcadapter.NewServer(svc.Accounts, svc.Portfolio, svc.Valuation, svc.History, svc.Quotes),
		logger,
	)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("Failed to listen", slog.String("addr", cfg.Server.GRPCAddr), slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC server", slog.Any("error", err))
		}
	}()

	// 5. Start HTTP Server
	httpApp := handler.NewApp(handler.Handlers{
		Accounts: &handler.AccountHandler{Service: svc.Accounts},
		Quotes:   &handler.QuoteHandler{Service: svc.Quotes},
		Portfolio: &handler.PortfolioHandler{
			Trading:   svc.Portfolio,
			Valuation: svc.Valuation,
		},
		Transactions: &handler.TransactionHandler{Service: svc.History},
	}, svc.Accounts, logger)

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.Server.HTTPAddr))
		if err := httpApp.Listen(cfg.Server.HTTPAddr); err != nil {
			logger.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(logger, grpcServer, httpApp, cfg.Server.ShutdownTimeout)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down both servers
func waitForShutdown(logger *slog.Logger, grpcServer *grpclib.Server, httpApp *fiber.App, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Shutting down gracefully", slog.String("signal", sig.String()))

	if err := httpApp.ShutdownWithTimeout(timeout); err != nil {
		logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		grpcServer.Stop()
	}
	logger.Info("Servers stopped")
}
