package authgate

import (
	"github.com/LucasCairns/authgate/validator"
)

// Scopes the service authorizes on. One identity variant exists per
// scope.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// Identity is a typed, minimal projection of verified claims. Each
// variant is tagged with the scope it requires, and a value can only be
// obtained through Require, which proves the scope is present. A
// handler whose parameter list names an Identity variant therefore
// statically documents its authorization requirement.
//
// The interface carries an unexported method, keeping the set of
// variants closed to this package.
type Identity interface {
	// Scope names the permission this identity proves.
	Scope() string

	bind(claims *validator.Claims)
}

// ReadUser identifies a caller holding the "read" scope.
type ReadUser struct {
	Username string
}

// Scope implements Identity.
func (ReadUser) Scope() string { return ScopeRead }

func (u *ReadUser) bind(claims *validator.Claims) { u.Username = claims.Subject }

// WriteUser identifies a caller holding the "write" scope.
type WriteUser struct {
	Username string
}

// Scope implements Identity.
func (WriteUser) Scope() string { return ScopeWrite }

func (u *WriteUser) bind(claims *validator.Claims) { u.Username = claims.Subject }

// Require projects verified claims into the identity variant T. It
// succeeds iff the claims carry T's scope; otherwise it fails with a
// *MissingScopeError naming the scope. Require is a pure function and
// performs no I/O.
//
//	user, err := authgate.Require[authgate.WriteUser](claims)
func Require[T any, P interface {
	*T
	Identity
}](claims *validator.Claims) (T, error) {
	var id T
	p := P(&id)

	if claims == nil || !claims.HasScope(p.Scope()) {
		return id, &MissingScopeError{Scope: p.Scope()}
	}

	p.bind(claims)
	return id, nil
}
