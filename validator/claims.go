package validator

import (
	"sort"
	"strings"
	"time"
)

// Claims is the verified payload of a bearer token. It is produced
// only by successful verification and is immutable for the lifetime of
// the request that triggered it.
type Claims struct {
	Subject string
	Issuer  string
	Expiry  time.Time
	Scopes  ScopeSet
}

// HasScope reports whether the claims grant the given scope.
func (c *Claims) HasScope(scope string) bool {
	return c.Scopes.Has(scope)
}

// ScopeSet is the set of permissions granted to a token's bearer.
type ScopeSet map[string]struct{}

// ParseScopes parses a space-delimited scope claim into a ScopeSet.
// Duplicates collapse and order is not significant.
func ParseScopes(scope string) ScopeSet {
	fields := strings.Fields(scope)
	set := make(ScopeSet, len(fields))
	for _, s := range fields {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given scope.
func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// List returns the scopes in sorted order.
func (s ScopeSet) List() []string {
	scopes := make([]string, 0, len(s))
	for scope := range s {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}
