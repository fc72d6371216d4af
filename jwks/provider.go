package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/LucasCairns/authgate/internal/oidc"
)

// ErrUnavailable is returned when the identity provider's key set
// cannot be obtained: the provider address is unconfigured, the network
// call fails, or the response cannot be parsed as a key set. It signals
// an operational problem rather than a caller credential problem.
var ErrUnavailable = errors.New("identity provider unavailable")

// WellKnownJWKSPath is the path appended to the provider base URL when
// fetching the key set directly, without OIDC discovery.
const WellKnownJWKSPath = "/.well-known/jwks.json"

// DefaultCacheTTL is the freshness window of the CachingProvider. A
// cached key set older than this triggers a refresh on the next call.
const DefaultCacheTTL = 300 * time.Second

// jwksMaxResponseSize caps the JWKS response body. Key sets are
// typically under 10KB; 1MB leaves ample headroom.
const jwksMaxResponseSize = 1 * 1024 * 1024

// KeyFetcher retrieves the currently published key set. Implementations
// perform no caching; the CachingProvider owns retry-free refresh
// policy on top of a fetcher.
type KeyFetcher interface {
	FetchKeys(ctx context.Context) (jwk.Set, error)
}

// Provider fetches the key set from the identity provider over HTTP.
// By default the set is fetched from BaseURL + WellKnownJWKSPath; with
// WithOIDCDiscovery the JWKS URI is instead discovered through the
// provider's openid-configuration document.
//
// Most callers will want to wrap a Provider in a CachingProvider to
// avoid refetching on every verification.
type Provider struct {
	BaseURL   string
	Client    *http.Client
	discovery bool

	// JWKS URI resolved through discovery, settled once.
	discoverOnce sync.Once
	discoveredMu sync.Mutex
	discovered   string
}

// NewProvider builds and returns a new *Provider. The base URL is
// deliberately allowed to be empty here: a missing provider address is
// reported as ErrUnavailable at fetch time rather than failing
// construction, so a misconfigured deployment starts up and serves
// 503s instead of crash-looping.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FetchKeys retrieves the current key set from the identity provider.
// Every failure mode wraps ErrUnavailable. No retries are performed.
func (p *Provider) FetchKeys(ctx context.Context) (jwk.Set, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is not configured", ErrUnavailable)
	}

	jwksURI, err := p.jwksURI(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not build request: %v", ErrUnavailable, err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: request returned status %d", ErrUnavailable, resp.StatusCode)
	}

	set, err := jwk.ParseReader(io.LimitReader(resp.Body, jwksMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse key set: %v", ErrUnavailable, err)
	}

	return set, nil
}

// jwksURI resolves the URI the key set is fetched from. The discovery
// result is settled once and reused for the lifetime of the Provider.
func (p *Provider) jwksURI(ctx context.Context) (string, error) {
	if !p.discovery {
		return strings.TrimSuffix(p.BaseURL, "/") + WellKnownJWKSPath, nil
	}

	var discoveryErr error
	p.discoverOnce.Do(func() {
		endpoints, err := oidc.GetWellKnownEndpoints(ctx, p.Client, p.BaseURL)
		if err != nil {
			discoveryErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		p.discoveredMu.Lock()
		p.discovered = endpoints.JWKSURI
		p.discoveredMu.Unlock()
	})
	if discoveryErr != nil {
		return "", discoveryErr
	}

	p.discoveredMu.Lock()
	uri := p.discovered
	p.discoveredMu.Unlock()

	if uri == "" {
		return "", fmt.Errorf("%w: JWKS URI discovery previously failed", ErrUnavailable)
	}
	return uri, nil
}

// CachingProvider serves the most recently fetched key set for as long
// as it is within the freshness window, refreshing through the wrapped
// fetcher once it goes stale.
//
// The cached slot is guarded by an RWMutex so readers never observe a
// partially installed set, and a separate refresh mutex guarantees that
// concurrent stale readers trigger exactly one fetch: the first caller
// performs it, the rest block until the result is installed. The fetch
// itself runs without holding the slot lock.
//
// Refresh failures propagate ErrUnavailable even when a stale set is
// still present. Serving keys past the freshness window risks accepting
// tokens signed by a rotated-out key, so the cache fails closed.
type CachingProvider struct {
	fetcher KeyFetcher
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	keys      jwk.Set
	fetchedAt time.Time

	refreshMu sync.Mutex
}

// NewCachingProvider builds a CachingProvider around the given fetcher.
// The freshness window defaults to DefaultCacheTTL.
func NewCachingProvider(fetcher KeyFetcher, opts ...CachingProviderOption) *CachingProvider {
	c := &CachingProvider{
		fetcher: fetcher,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// KeyFunc returns a key set no older than the freshness window,
// fetching a fresh one when the cached copy is stale or absent. The
// returned set is a clone; callers cannot mutate the shared copy.
func (c *CachingProvider) KeyFunc(ctx context.Context) (jwk.Set, error) {
	if set, ok := c.cached(); ok {
		return set, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if set, ok := c.cached(); ok {
		return set, nil
	}

	set, err := c.fetcher.FetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = set
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return cloneSet(set)
}

// cached returns a clone of the cached set if it is still fresh.
func (c *CachingProvider) cached() (jwk.Set, bool) {
	c.mu.RLock()
	set, fetchedAt := c.keys, c.fetchedAt
	c.mu.RUnlock()

	if set == nil || c.now().Sub(fetchedAt) >= c.ttl {
		return nil, false
	}

	cloned, err := cloneSet(set)
	if err != nil {
		return nil, false
	}
	return cloned, true
}

func cloneSet(set jwk.Set) (jwk.Set, error) {
	cloned, err := set.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: could not clone key set: %v", ErrUnavailable, err)
	}
	return cloned, nil
}
