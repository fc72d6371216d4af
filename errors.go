package authgate

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a request carries no bearer token.
// Verification never begins for such requests.
var ErrMissingToken = errors.New("missing token")

// MissingScopeError is returned when a verified token does not carry
// the scope a handler requires.
type MissingScopeError struct {
	Scope string
}

func (e *MissingScopeError) Error() string {
	return fmt.Sprintf("client requires the scope %q", e.Scope)
}
