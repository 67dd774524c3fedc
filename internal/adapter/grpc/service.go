package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "stockfolio.v1.PortfolioService"

// Full method names, as seen by interceptors
const (
	MethodRegister         = "/" + ServiceName + "/Register"
	MethodQuote            = "/" + ServiceName + "/Quote"
	MethodBuy              = "/" + ServiceName + "/Buy"
	MethodSell             = "/" + ServiceName + "/Sell"
	MethodDepositCash      = "/" + ServiceName + "/DepositCash"
	MethodGetPortfolio     = "/" + ServiceName + "/GetPortfolio"
	MethodListTransactions = "/" + ServiceName + "/ListTransactions"
)

// PortfolioServiceServer is the server API for the PortfolioService service
type PortfolioServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Quote(context.Context, *QuoteRequest) (*QuoteResponse, error)
	Buy(context.Context, *TradeRequest) (*TradeResponse, error)
	Sell(context.Context, *TradeRequest) (*TradeResponse, error)
	DepositCash(context.Context, *DepositCashRequest) (*DepositCashResponse, error)
	GetPortfolio(context.Context, *GetPortfolioRequest) (*GetPortfolioResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
}

// RegisterPortfolioServiceServer registers srv on s
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&portfolioServiceDesc, srv)
}

var portfolioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, PortfolioServiceServer.Register)},
		{MethodName: "Quote", Handler: unaryHandler(MethodQuote, PortfolioServiceServer.Quote)},
		{MethodName: "Buy", Handler: unaryHandler(MethodBuy, PortfolioServiceServer.Buy)},
		{MethodName: "Sell", Handler: unaryHandler(MethodSell, PortfolioServiceServer.Sell)},
		{MethodName: "DepositCash", Handler: unaryHandler(MethodDepositCash, PortfolioServiceServer.DepositCash)},
		{MethodName: "GetPortfolio", Handler: unaryHandler(MethodGetPortfolio, PortfolioServiceServer.GetPortfolio)},
		{MethodName: "ListTransactions", Handler: unaryHandler(MethodListTransactions, PortfolioServiceServer.ListTransactions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockfolio/v1/portfolio",
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, running
// the configured interceptor chain around it
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(PortfolioServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PortfolioServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PortfolioServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
