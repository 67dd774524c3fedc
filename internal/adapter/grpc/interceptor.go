package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authenticator resolves an API key to the owning user's ID
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error)
}

type userIDKey struct{}

// ContextWithUserID returns a copy of ctx carrying the authenticated user's ID
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user ID stored by AuthInterceptor
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// AuthInterceptor returns a gRPC unary server interceptor that resolves
// the API key in the authorization metadata to a user ID.
// If the key is missing or unknown, it returns status.Unauthenticated.
// If valid, it calls the handler with the user ID in the context.
// Methods listed in public skip the check.
func AuthInterceptor(auth Authenticator, public ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]bool, len(public))
	for _, m := range public {
		skip[m] = true
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if skip[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		userID, err := auth.Authenticate(ctx, authHeaders[0])
		if err != nil {
			return nil, mapError(err)
		}

		return handler(ContextWithUserID(ctx, userID), req)
	}
}

// LoggingInterceptor logs every call; rejected calls are logged at Warn
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			st, _ := status.FromError(err)
			attrs = append(attrs, slog.String("code", st.Code().String()), slog.String("error", st.Message()))
			if st.Code() == codes.Internal || st.Code() == codes.Unknown {
				logger.Error("grpc call failed", attrs...)
			} else {
				logger.Warn("grpc call rejected", attrs...)
			}
			return resp, err
		}

		logger.Debug("grpc call", attrs...)
		return resp, nil
	}
}
