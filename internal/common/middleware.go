package common

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor resolves the bearer token in the "authorization" metadata
// into a Viewer on the context. Methods listed in publicMethods run
// anonymously when no token is sent; every other method requires one.
func AuthInterceptor(tokens *TokenManager, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token, err := bearerFromMetadata(ctx)
		if err != nil {
			if publicMethods[info.FullMethod] {
				return handler(WithViewer(ctx, Anonymous()), req)
			}
			return nil, err
		}

		claims, err := tokens.ValidToken(token)
		if err != nil {
			if publicMethods[info.FullMethod] {
				return handler(WithViewer(ctx, Anonymous()), req)
			}
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = WithViewer(ctx, Viewer{UserID: claims.UserID, Username: claims.Username, Authenticated: true})
		return handler(ctx, req)
	}
}

func bearerFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md["authorization"]
	if len(vals) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization required")
	}

	// vals[0] = Bearer <token>
	parts := strings.Fields(vals[0])
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", status.Error(codes.Unauthenticated, "invalid auth header")
	}
	return parts[1], nil
}
