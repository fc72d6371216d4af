package authgate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/LucasCairns/authgate/jwks"
	"github.com/LucasCairns/authgate/validator"
)

// ErrorHandler is called when any step of the gate fails. It owns the
// translation from the internal failure to the wire-level response. If
// you implement your own ErrorHandler you MUST distinguish the failure
// kinds (ErrMissingToken, validator.ErrInvalidToken,
// validator.ErrExpiredToken, jwks.ErrUnavailable, MissingScopeError);
// collapsing them hides operational failures behind credential errors.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler maps each failure kind to its status code and a
// structured JSON body:
//
//	missing token      401 {"message":"Missing token"}
//	expired token      401 {"message":"Token expired"}
//	keys unavailable   503 {"message":"Unable to verify JWT token"}
//	missing scope      403 {"message":"Client requires the scope: {scope}"}
//	anything else      401 {"message":"Invalid token"}
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// mapError is the translation table shared by the HTTP error handler.
// Invalid token is the catch-all: every failure that is not explicitly
// classified is a credential problem.
func mapError(err error) (status int, message string) {
	var missingScope *MissingScopeError

	switch {
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, "Missing token"
	case errors.Is(err, validator.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, jwks.ErrUnavailable):
		return http.StatusServiceUnavailable, "Unable to verify JWT token"
	case errors.As(err, &missingScope):
		return http.StatusForbidden, fmt.Sprintf("Client requires the scope: %s", missingScope.Scope)
	default:
		return http.StatusUnauthorized, "Invalid token"
	}
}
