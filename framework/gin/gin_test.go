package authgin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasCairns/authgate"
	"github.com/LucasCairns/authgate/validator"
)

type fakeValidator struct {
	claims map[string]*validator.Claims
}

func (f *fakeValidator) ValidateToken(ctx context.Context, tokenString string) (*validator.Claims, error) {
	if claims, ok := f.claims[tokenString]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: unknown token", validator.ErrInvalidToken)
}

func newGate() *authgate.Middleware {
	return authgate.New(&fakeValidator{claims: map[string]*validator.Claims{
		"reader-token": {Subject: "alice", Scopes: validator.ParseScopes("read")},
		"writer-token": {Subject: "bob", Scopes: validator.ParseScopes("read write")},
	}})
}

func setupRouter(gate *authgate.Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/person", CheckJWT(gate), RequireScope(gate, authgate.ScopeRead), func(c *gin.Context) {
		user, err := Identity[authgate.ReadUser](c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	router.POST("/person", CheckJWT(gate), RequireScope(gate, authgate.ScopeWrite), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return router
}

func doRequest(router *gin.Engine, method, target, authorization string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestCheckJWT(t *testing.T) {
	router := setupRouter(newGate())

	t.Run("it admits a valid token and exposes the identity", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, "/person", "Bearer reader-token")

		assert.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("it rejects a request with no token", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, "/person", "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.JSONEq(t, `{"message":"Missing token"}`, recorder.Body.String())
	})

	t.Run("it rejects an unverifiable token", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, "/person", "Bearer forged-token")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.JSONEq(t, `{"message":"Invalid token"}`, recorder.Body.String())
	})
}

func TestRequireScope(t *testing.T) {
	router := setupRouter(newGate())

	t.Run("it admits a caller holding the scope", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, "/person", "Bearer writer-token")

		assert.Equal(t, http.StatusCreated, recorder.Code)
	})

	t.Run("it answers 403 naming the scope when the scope is absent", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, "/person", "Bearer reader-token")

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.JSONEq(t, `{"message":"Client requires the scope: write"}`, recorder.Body.String())
	})
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("it fails with ErrMissingToken when nothing is stored", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := GetClaims(c, DefaultClaimsKey)
		assert.ErrorIs(t, err, authgate.ErrMissingToken)
	})

	t.Run("it retrieves claims under a custom key", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		want := &validator.Claims{Subject: "alice"}
		c.Set("auth", want)

		claims, err := GetClaims(c, "auth")
		require.NoError(t, err)
		assert.Equal(t, want, claims)
	})
}
