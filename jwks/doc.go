// Package jwks retrieves and caches the JSON Web Key Set published by
// the identity provider. The Provider performs the network fetch from
// the provider's well-known endpoint; the CachingProvider wraps any
// KeyFetcher with a time-bounded, concurrency-safe cache so that many
// concurrent verification attempts share one key set and at most one
// in-flight refresh.
package jwks
