// Package oidc resolves the identity provider's published endpoints
// from its openid-configuration document.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
)

// WellKnownEndpoints holds the subset of the OIDC discovery document
// the key set fetcher needs.
type WellKnownEndpoints struct {
	JWKSURI string `json:"jwks_uri"`
}

// GetWellKnownEndpoints fetches the discovery document published under
// the given base URL.
func GetWellKnownEndpoints(ctx context.Context, client *http.Client, baseURL string) (*WellKnownEndpoints, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base URL: %w", err)
	}
	u.Path = path.Join(u.Path, ".well-known/openid-configuration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get well known endpoints: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get well known endpoints from url %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("well known endpoints request returned status %d", resp.StatusCode)
	}

	var endpoints WellKnownEndpoints
	if err := json.NewDecoder(resp.Body).Decode(&endpoints); err != nil {
		return nil, fmt.Errorf("could not decode well known endpoints: %w", err)
	}

	return &endpoints, nil
}
