package authgate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHeaderTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		request   *http.Request
		wantToken string
		wantError string
	}{
		{
			name:    "it yields an empty token when the header is absent",
			request: httptest.NewRequest(http.MethodGet, "http://example.com", nil),
		},
		{
			name: "it extracts the token from a bearer header",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
				request.Header.Set("Authorization", "Bearer i-am-a-token")
				return request
			}(),
			wantToken: "i-am-a-token",
		},
		{
			name: "it accepts a lowercase scheme",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
				request.Header.Set("Authorization", "bearer i-am-a-token")
				return request
			}(),
			wantToken: "i-am-a-token",
		},
		{
			name: "it fails on a non-bearer scheme",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
				request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
				return request
			}(),
			wantError: "Authorization header format must be Bearer {token}",
		},
		{
			name: "it fails when the token part is missing",
			request: func() *http.Request {
				request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
				request.Header.Set("Authorization", "Bearer")
				return request
			}(),
			wantError: "Authorization header format must be Bearer {token}",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			token, err := AuthHeaderTokenExtractor(testCase.request)

			if testCase.wantError != "" {
				assert.EqualError(t, err, testCase.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantToken, token)
		})
	}
}

func TestCookieTokenExtractor(t *testing.T) {
	t.Run("it yields an empty token when the cookie is absent", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

		token, err := CookieTokenExtractor("token")(request)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("it extracts the token from the named cookie", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		request.AddCookie(&http.Cookie{Name: "token", Value: "i-am-a-token"})

		token, err := CookieTokenExtractor("token")(request)
		require.NoError(t, err)
		assert.Equal(t, "i-am-a-token", token)
	})
}

func TestParameterTokenExtractor(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "http://example.com?token=i-am-a-token", nil)

	token, err := ParameterTokenExtractor("token")(request)
	require.NoError(t, err)
	assert.Equal(t, "i-am-a-token", token)
}

func TestMultiTokenExtractor(t *testing.T) {
	t.Run("it uses the first extractor that yields a token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com?token=from-query", nil)
		request.Header.Set("Authorization", "Bearer from-header")

		extractor := MultiTokenExtractor(
			ParameterTokenExtractor("token"),
			AuthHeaderTokenExtractor,
		)

		token, err := extractor(request)
		require.NoError(t, err)
		assert.Equal(t, "from-query", token)
	})

	t.Run("it falls through extractors that yield nothing", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		request.Header.Set("Authorization", "Bearer from-header")

		extractor := MultiTokenExtractor(
			ParameterTokenExtractor("token"),
			AuthHeaderTokenExtractor,
		)

		token, err := extractor(request)
		require.NoError(t, err)
		assert.Equal(t, "from-header", token)
	})

	t.Run("it stops at the first extractor error", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		extractor := MultiTokenExtractor(
			AuthHeaderTokenExtractor,
			ParameterTokenExtractor("token"),
		)

		_, err := extractor(request)
		assert.Error(t, err)
	})

	t.Run("it yields an empty token when every extractor comes up empty", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

		extractor := MultiTokenExtractor(
			AuthHeaderTokenExtractor,
			ParameterTokenExtractor("token"),
		)

		token, err := extractor(request)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}
