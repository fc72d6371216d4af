// Package authecho adapts the authentication gate to the Echo framework.
package authecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LucasCairns/authgate"
	"github.com/LucasCairns/authgate/validator"
)

// DefaultClaimsKey is the Echo context key under which verified claims
// are stored.
const DefaultClaimsKey = "claims"

// CheckJWT returns an Echo middleware that verifies the request's
// bearer token through the given Middleware and stores the verified
// claims in the Echo context. Failed requests receive the gate's error
// response and never reach the route handler.
func CheckJWT(m *authgate.Middleware, opts ...Option) echo.MiddlewareFunc {
	config := &config{
		claimsKey: DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var nextErr error
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)

				if claims, err := authgate.ClaimsFromContext(r.Context()); err == nil {
					c.Set(config.claimsKey, claims)
				}

				nextErr = next(c)
			})

			m.CheckJWT(inner).ServeHTTP(c.Response(), c.Request())
			return nextErr
		}
	}
}

// RequireScope returns an Echo middleware enforcing that the verified
// claims stored by CheckJWT carry the given scope. It must run after
// CheckJWT.
func RequireScope(scope string, opts ...Option) echo.MiddlewareFunc {
	config := &config{
		claimsKey: DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := GetClaims(c, config.claimsKey)
			if err != nil {
				authgate.DefaultErrorHandler(c.Response(), c.Request(), err)
				return nil
			}

			if !claims.HasScope(scope) {
				err := &authgate.MissingScopeError{Scope: scope}
				authgate.DefaultErrorHandler(c.Response(), c.Request(), err)
				return nil
			}

			return next(c)
		}
	}
}

// Identity projects the verified claims stored in the Echo context into
// the identity variant T.
func Identity[T any, P interface {
	*T
	authgate.Identity
}](c echo.Context) (T, error) {
	claims, err := GetClaims(c, DefaultClaimsKey)
	if err != nil {
		var zero T
		return zero, err
	}
	return authgate.Require[T, P](claims)
}

// GetClaims retrieves the verified claims stored by CheckJWT.
func GetClaims(c echo.Context, claimsKey string) (*validator.Claims, error) {
	if claimsKey == "" {
		claimsKey = DefaultClaimsKey
	}

	claims, ok := c.Get(claimsKey).(*validator.Claims)
	if !ok {
		return nil, authgate.ErrMissingToken
	}

	return claims, nil
}
