// Package authgin adapts the authentication gate to the Gin framework.
package authgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LucasCairns/authgate"
	"github.com/LucasCairns/authgate/validator"
)

// DefaultClaimsKey is the Gin context key under which verified claims
// are stored.
const DefaultClaimsKey = "claims"

// CheckJWT returns a Gin middleware that verifies the request's bearer
// token through the given Middleware and stores the verified claims in
// the Gin context. Failed requests are aborted with the gate's error
// response and never reach the route handler.
func CheckJWT(m *authgate.Middleware, opts ...Option) gin.HandlerFunc {
	config := &config{
		claimsKey: DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		passed := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r

			if claims, err := authgate.ClaimsFromContext(r.Context()); err == nil {
				c.Set(config.claimsKey, claims)
			}
		})

		m.CheckJWT(inner).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}

// RequireScope returns a Gin middleware enforcing that the verified
// claims stored by CheckJWT carry the given scope. It must run after
// CheckJWT. The scope requirement is visible at the route declaration:
//
//	r.POST("/person", authgin.RequireScope(m, authgate.ScopeWrite), createPerson)
func RequireScope(m *authgate.Middleware, scope string, opts ...Option) gin.HandlerFunc {
	config := &config{
		claimsKey: DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		claims, err := GetClaims(c, config.claimsKey)
		if err != nil {
			abortWithGateError(c, err)
			return
		}

		if !claims.HasScope(scope) {
			abortWithGateError(c, &authgate.MissingScopeError{Scope: scope})
			return
		}

		c.Next()
	}
}

// Identity projects the verified claims stored in the Gin context into
// the identity variant T.
//
//	user, err := authgin.Identity[authgate.ReadUser](c)
func Identity[T any, P interface {
	*T
	authgate.Identity
}](c *gin.Context) (T, error) {
	claims, err := GetClaims(c, DefaultClaimsKey)
	if err != nil {
		var zero T
		return zero, err
	}
	return authgate.Require[T, P](claims)
}

// GetClaims retrieves the verified claims stored by CheckJWT.
func GetClaims(c *gin.Context, claimsKey string) (*validator.Claims, error) {
	if claimsKey == "" {
		claimsKey = DefaultClaimsKey
	}

	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, authgate.ErrMissingToken
	}

	claims, ok := value.(*validator.Claims)
	if !ok {
		return nil, authgate.ErrMissingToken
	}

	return claims, nil
}

// abortWithGateError renders the gate's standard error response through
// a Gin context.
func abortWithGateError(c *gin.Context, err error) {
	authgate.DefaultErrorHandler(c.Writer, c.Request, err)
	c.Abort()
}
