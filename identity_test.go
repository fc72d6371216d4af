package authgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasCairns/authgate/validator"
)

func TestRequire(t *testing.T) {
	t.Run("it binds a ReadUser when the read scope is held", func(t *testing.T) {
		claims := &validator.Claims{Subject: "alice", Scopes: validator.ParseScopes("read")}

		user, err := Require[ReadUser](claims)
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, ScopeRead, user.Scope())
	})

	t.Run("it binds a WriteUser when the write scope is held", func(t *testing.T) {
		claims := &validator.Claims{Subject: "bob", Scopes: validator.ParseScopes("read write")}

		user, err := Require[WriteUser](claims)
		require.NoError(t, err)

		assert.Equal(t, "bob", user.Username)
		assert.Equal(t, ScopeWrite, user.Scope())
	})

	t.Run("it fails naming the scope when the scope is absent", func(t *testing.T) {
		claims := &validator.Claims{Subject: "alice", Scopes: validator.ParseScopes("read")}

		_, err := Require[WriteUser](claims)

		var missingScope *MissingScopeError
		require.ErrorAs(t, err, &missingScope)
		assert.Equal(t, ScopeWrite, missingScope.Scope)
	})

	t.Run("it treats unrelated scopes as absent", func(t *testing.T) {
		claims := &validator.Claims{Subject: "alice", Scopes: validator.ParseScopes("admin reader")}

		_, err := Require[ReadUser](claims)
		assert.Error(t, err, "scope matching must be exact, not prefix based")
	})

	t.Run("it fails on nil claims", func(t *testing.T) {
		_, err := Require[ReadUser](nil)

		var missingScope *MissingScopeError
		assert.ErrorAs(t, err, &missingScope)
	})

	t.Run("its success side effect is only the binding", func(t *testing.T) {
		claims := &validator.Claims{Subject: "alice", Scopes: validator.ParseScopes("read write")}

		first, err := Require[ReadUser](claims)
		require.NoError(t, err)
		second, err := Require[ReadUser](claims)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
