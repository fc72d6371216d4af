// Package authgrpc adapts the authentication gate to gRPC servers.
package authgrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LucasCairns/authgate"
	"github.com/LucasCairns/authgate/jwks"
	"github.com/LucasCairns/authgate/validator"
)

// Interceptor verifies bearer tokens carried in request metadata and
// enforces per-method scope requirements before a handler runs.
type Interceptor struct {
	validator      authgate.TokenValidator
	tokenExtractor TokenExtractor
	requiredScopes map[string]string
	logger         authgate.Logger
}

// New creates a new Interceptor around the supplied validator.
func New(v authgate.TokenValidator, opts ...Option) *Interceptor {
	i := &Interceptor{
		validator:      v,
		tokenExtractor: MetadataTokenExtractor,
		requiredScopes: map[string]string{},
		logger:         &authgate.NoopLogger{},
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// authenticate runs the full gate for one call: token extraction,
// verification and the method's scope check. On success it returns a
// context carrying the verified claims.
func (i *Interceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		i.logger.Warnf("call %s rejected: %v", method, err)
		return nil, toStatusError(errors.Join(validator.ErrInvalidToken, err))
	}

	if token == "" {
		i.logger.Warnf("call %s rejected: no token in metadata", method)
		return nil, toStatusError(authgate.ErrMissingToken)
	}

	claims, err := i.validator.ValidateToken(ctx, token)
	if err != nil {
		i.logger.Warnf("call %s rejected: %v", method, err)
		return nil, toStatusError(err)
	}

	if scope, ok := i.requiredScopes[method]; ok && !claims.HasScope(scope) {
		err := &authgate.MissingScopeError{Scope: scope}
		i.logger.Warnf("call %s rejected: %v", method, err)
		return nil, toStatusError(err)
	}

	return context.WithValue(ctx, authgate.ContextKey{}, claims), nil
}

// UnaryServerInterceptor returns a gRPC unary server interceptor
// enforcing the gate.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		authCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authCtx, req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor
// enforcing the gate.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		authCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: authCtx})
	}
}

// toStatusError maps the gate's failure taxonomy to gRPC status codes.
// Credential problems are Unauthenticated, missing scopes are
// PermissionDenied, and an unobtainable key set is Unavailable.
func toStatusError(err error) error {
	var missingScope *authgate.MissingScopeError

	switch {
	case errors.Is(err, authgate.ErrMissingToken):
		return status.Error(codes.Unauthenticated, "missing token")
	case errors.Is(err, validator.ErrExpiredToken):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, jwks.ErrUnavailable):
		return status.Error(codes.Unavailable, "unable to verify JWT token")
	case errors.As(err, &missingScope):
		return status.Errorf(codes.PermissionDenied, "client requires the scope: %s", missingScope.Scope)
	default:
		return status.Error(codes.Unauthenticated, "invalid token")
	}
}

// wrappedServerStream wraps a grpc.ServerStream to override its context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// ClaimsFromContext retrieves the verified claims stored by the
// interceptor.
func ClaimsFromContext(ctx context.Context) (*validator.Claims, error) {
	return authgate.ClaimsFromContext(ctx)
}

// Identity projects the verified claims in ctx into the identity
// variant T.
func Identity[T any, P interface {
	*T
	authgate.Identity
}](ctx context.Context) (T, error) {
	claims, err := authgate.ClaimsFromContext(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return authgate.Require[T, P](claims)
}
