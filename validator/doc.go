// Package validator verifies bearer tokens against the identity
// provider's published signing keys and yields verified claims.
//
// Verification resolves the signing key by the key ID declared in the
// token header, restricts the verification algorithm to an explicit
// allow-list of RSA signature algorithms, and validates the signature
// and temporal claims before any claim value is trusted.
package validator
