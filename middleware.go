package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/LucasCairns/authgate/jwks"
	"github.com/LucasCairns/authgate/validator"
)

// TokenValidator verifies a compact bearer token and yields its claims.
// It is satisfied by *validator.Validator. Implementations must be safe
// for concurrent use.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*validator.Claims, error)
}

// ContextKey is the request context key under which verified claims are
// stored by CheckJWT.
type ContextKey struct{}

// Middleware intercepts requests before a handler runs, verifies the
// bearer token they carry and stores the verified claims in the request
// context. A Middleware is immutable after construction and safe to
// share across routes and concurrent requests.
type Middleware struct {
	validator           TokenValidator
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	credentialsOptional bool
	validateOnOptions   bool
	exclusionURLHandler func(r *http.Request) bool
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// New constructs a new Middleware around the supplied validator.
func New(v TokenValidator, opts ...Option) *Middleware {
	m := &Middleware{
		validator:         v,
		errorHandler:      DefaultErrorHandler,
		tokenExtractor:    AuthHeaderTokenExtractor,
		validateOnOptions: true,
		logger:            &NoopLogger{},
		metrics:           &NoopMetrics{},
		tracer:            &NoopTracer{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CheckJWT wraps next so that it only runs for requests carrying a
// valid bearer token. Failures never reach next; they are translated by
// the configured ErrorHandler.
func (m *Middleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			m.logger.Debugf("skipping token validation for excluded URL %s", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		if !m.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.StartSpan(r.Context(), "authgate.check")
		defer span.End()
		r = r.WithContext(ctx)

		token, err := m.tokenExtractor(r)
		if err != nil {
			// A token was supplied but could not be read; this is a
			// credential problem, not an absent credential.
			m.fail(w, r, span, fmt.Errorf("%w: %v", validator.ErrInvalidToken, err))
			return
		}

		if token == "" {
			if m.credentialsOptional {
				m.logger.Debugf("no credentials supplied, continuing (credentials optional)")
				next.ServeHTTP(w, r)
				return
			}
			m.fail(w, r, span, ErrMissingToken)
			return
		}

		claims, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			m.fail(w, r, span, err)
			return
		}

		span.SetTag("auth.outcome", "ok")
		m.metrics.IncCounter("authgate_checks_total", map[string]string{"outcome": "ok"})
		m.logger.Debugf("token verified for subject %q", claims.Subject)

		r = r.WithContext(context.WithValue(r.Context(), ContextKey{}, claims))
		next.ServeHTTP(w, r)
	})
}

// fail records the outcome and hands the error to the boundary mapper
// unchanged.
func (m *Middleware) fail(w http.ResponseWriter, r *http.Request, span Span, err error) {
	outcome := classify(err)
	span.SetTag("auth.outcome", outcome)
	m.metrics.IncCounter("authgate_checks_total", map[string]string{"outcome": outcome})

	if errors.Is(err, jwks.ErrUnavailable) {
		// The one failure kind that is the operator's problem rather
		// than the caller's.
		m.logger.Errorf("token verification unavailable: %v", err)
	} else {
		m.logger.Warnf("request rejected: %v", err)
	}

	m.errorHandler(w, r, err)
}

// classify names a failure kind for metrics and tracing.
func classify(err error) string {
	var missingScope *MissingScopeError

	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, validator.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, jwks.ErrUnavailable):
		return "unavailable"
	case errors.As(err, &missingScope):
		return "missing_scope"
	default:
		return "invalid_token"
	}
}

// ClaimsFromContext retrieves the verified claims stored by CheckJWT.
// It returns ErrMissingToken when no claims are present, which happens
// only when credentials are optional and none were supplied.
func ClaimsFromContext(ctx context.Context) (*validator.Claims, error) {
	claims, ok := ctx.Value(ContextKey{}).(*validator.Claims)
	if !ok {
		return nil, ErrMissingToken
	}
	return claims, nil
}

// Handle composes verification and authorization into a single gate:
// the returned handler verifies the request's token, proves the scope
// required by the identity variant T and only then invokes h with the
// typed identity. Handlers receive the identity, never raw claims.
//
//	mux.Handle("/person", authgate.Handle(gate, createPerson))
//
//	func createPerson(w http.ResponseWriter, r *http.Request, user authgate.WriteUser) { ... }
func Handle[T any, P interface {
	*T
	Identity
}](m *Middleware, h func(w http.ResponseWriter, r *http.Request, identity T)) http.Handler {
	return m.CheckJWT(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		identity, err := Require[T, P](claims)
		if err != nil {
			m.metrics.IncCounter("authgate_checks_total", map[string]string{"outcome": "missing_scope"})
			m.logger.Warnf("request rejected: %v", err)
			m.errorHandler(w, r, err)
			return
		}

		h(w, r, identity)
	}))
}
