package jwks

import (
	"net/http"
	"time"
)

// ProviderOption is how options for the Provider are set up.
type ProviderOption func(*Provider)

// WithBaseURL sets the identity provider's base address. When left
// unset, FetchKeys fails with ErrUnavailable.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.BaseURL = baseURL
	}
}

// WithClient sets a custom HTTP client for the Provider. If not
// specified, a default client with a 30s timeout is used.
func WithClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.Client = client
		}
	}
}

// WithOIDCDiscovery makes the Provider discover the JWKS URI through
// the provider's .well-known/openid-configuration document instead of
// assuming the fixed WellKnownJWKSPath.
func WithOIDCDiscovery() ProviderOption {
	return func(p *Provider) {
		p.discovery = true
	}
}

// CachingProviderOption is how options for the CachingProvider are set up.
type CachingProviderOption func(*CachingProvider)

// WithCacheTTL sets the freshness window of the cache. Non-positive
// values are ignored and the default of DefaultCacheTTL is kept.
func WithCacheTTL(ttl time.Duration) CachingProviderOption {
	return func(c *CachingProvider) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// withClock overrides the cache's clock. Used by tests to control
// staleness deterministically.
func withClock(now func() time.Time) CachingProviderOption {
	return func(c *CachingProvider) {
		c.now = now
	}
}
