package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/simaogato/stockfolio-backend/internal/domain"
	"github.com/simaogato/stockfolio-backend/internal/usecase/account"
	"github.com/simaogato/stockfolio-backend/internal/usecase/history"
	"github.com/simaogato/stockfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/stockfolio-backend/internal/usecase/quote"
	"github.com/simaogato/stockfolio-backend/internal/usecase/valuation"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	AccountService   *account.AccountService
	PortfolioService *portfolio.PortfolioService
	ValuationService *valuation.ValuationService
	HistoryService   *history.HistoryService
	QuoteService     *quote.QuoteService
}

// NewServer creates a new gRPC server instance
func NewServer(
	accountService *account.AccountService,
	portfolioService *portfolio.PortfolioService,
	valuationService *valuation.ValuationService,
	historyService *history.HistoryService,
	quoteService *quote.QuoteService,
) *Server {
	return &Server{
		AccountService:   accountService,
		PortfolioService: portfolioService,
		ValuationService: valuationService,
		HistoryService:   historyService,
		QuoteService:     quoteService,
	}
}

// NewGRPCServer builds a grpc.Server speaking the JSON codec, with logging
// and API-key authentication (Register is public), and registers srv on it
func NewGRPCServer(srv *Server, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec),
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			AuthInterceptor(srv.AccountService, MethodRegister),
		),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterPortfolioServiceServer(s, srv)
	return s
}

// Register handles the Register RPC
func (s *Server) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	user, apiKey, err := s.AccountService.Register(ctx, req.Username)
	if err != nil {
		return nil, mapError(err)
	}

	return &RegisterResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
		Cash:     user.Cash.String(),
		APIKey:   apiKey,
	}, nil
}

// Quote handles the Quote RPC
func (s *Server) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	q, err := s.QuoteService.Quote(ctx, req.Symbol)
	if err != nil {
		return nil, mapError(err)
	}

	return &QuoteResponse{
		Symbol: q.Symbol,
		Name:   q.Name,
		Price:  q.Price.String(),
	}, nil
}

// Buy handles the Buy RPC
func (s *Server) Buy(ctx context.Context, req *TradeRequest) (*TradeResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	shares, err := domain.ParseQuantity(string(req.Shares))
	if err != nil {
		return nil, mapError(err)
	}

	result, err := s.PortfolioService.Buy(ctx, userID, req.Symbol, shares)
	if err != nil {
		return nil, mapError(err)
	}
	return tradeToResponse(result), nil
}

// Sell handles the Sell RPC
func (s *Server) Sell(ctx context.Context, req *TradeRequest) (*TradeResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	shares, err := domain.ParseQuantity(string(req.Shares))
	if err != nil {
		return nil, mapError(err)
	}

	result, err := s.PortfolioService.Sell(ctx, userID, req.Symbol, shares)
	if err != nil {
		return nil, mapError(err)
	}
	return tradeToResponse(result), nil
}

// DepositCash handles the DepositCash RPC
func (s *Server) DepositCash(ctx context.Context, req *DepositCashRequest) (*DepositCashResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	// Parse amount from string to decimal
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	cash, err := s.PortfolioService.DepositCash(ctx, userID, amount)
	if err != nil {
		return nil, mapError(err)
	}
	return &DepositCashResponse{Cash: cash.String()}, nil
}

// GetPortfolio handles the GetPortfolio RPC
func (s *Server) GetPortfolio(ctx context.Context, _ *GetPortfolioRequest) (*GetPortfolioResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.ValuationService.Summarize(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	holdings := make([]Position, 0, len(view.Holdings))
	for _, p := range view.Holdings {
		holdings = append(holdings, Position{
			Symbol:    p.Symbol,
			Name:      p.Name,
			Shares:    p.Shares,
			UnitPrice: p.UnitPrice.String(),
			LineTotal: p.LineTotal.String(),
		})
	}

	return &GetPortfolioResponse{
		Cash:          view.Cash.String(),
		Holdings:      holdings,
		HoldingsValue: view.HoldingsValue.String(),
		NetWorth:      view.NetWorth.String(),
	}, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, _ *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.HistoryService.List(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, domainTransactionToWire(tx))
	}
	return &ListTransactionsResponse{Transactions: out}, nil
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return userID, status.Error(codes.Unauthenticated, "no authenticated user")
	}
	return userID, nil
}

// domainTransactionToWire converts a domain Transaction to its wire form
func domainTransactionToWire(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:         tx.ID.String(),
		Symbol:     tx.Symbol,
		Shares:     tx.Shares,
		Price:      tx.Price.String(),
		Type:       string(tx.Type),
		ExecutedAt: timestamppb.New(tx.ExecutedAt),
	}
}

func tradeToResponse(result *portfolio.TradeResult) *TradeResponse {
	return &TradeResponse{
		Transaction: domainTransactionToWire(result.Transaction),
		Cash:        result.Cash.String(),
		Shares:      result.Shares,
	}
}

// mapError converts domain errors to gRPC status errors. Errors that are not
// rejections are logged and reach the client only as "internal error".
func mapError(err error) error {
	if err == nil {
		return nil
	}
	// already a status, e.g. from a nested call
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codeFor(domain.ErrorKind(err))
	if code == codes.Internal {
		slog.Error("unhandled error", slog.Any("error", err))
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func codeFor(kind string) codes.Code {
	switch kind {
	case domain.KindInvalidQuantity, domain.KindInvalidAmount, domain.KindInvalidUsername:
		return codes.InvalidArgument
	case domain.KindUnknownSymbol, domain.KindUserNotFound:
		return codes.NotFound
	case domain.KindInsufficientFunds, domain.KindInsufficientShares:
		return codes.FailedPrecondition
	case domain.KindQuoteUnavailable:
		return codes.Unavailable
	case domain.KindStorageConflict:
		return codes.Aborted
	case domain.KindUsernameTaken:
		return codes.AlreadyExists
	case domain.KindUnauthenticated:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
