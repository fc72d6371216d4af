package validator

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrInvalidToken is returned when a token cannot be trusted: the
	// compact serialization is malformed, the header names no key ID,
	// no published key matches it, the key or its algorithm is outside
	// the supported set, or signature/claim validation fails for any
	// reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token's signature is valid
	// but its expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Signature algorithms accepted for key material the service supports.
const (
	RS256 = SignatureAlgorithm("RS256") // RSASSA-PKCS-v1.5 using SHA-256
	RS384 = SignatureAlgorithm("RS384") // RSASSA-PKCS-v1.5 using SHA-384
	RS512 = SignatureAlgorithm("RS512") // RSASSA-PKCS-v1.5 using SHA-512
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

var supportedAlgorithms = map[SignatureAlgorithm]jwa.SignatureAlgorithm{
	RS256: jwa.RS256,
	RS384: jwa.RS384,
	RS512: jwa.RS512,
}

// KeyFunc supplies the current key set. Typically this is the KeyFunc
// of a jwks.CachingProvider. Errors are propagated to the caller
// unchanged so that availability failures stay distinguishable from
// credential failures.
type KeyFunc func(ctx context.Context) (jwk.Set, error)

// Validator verifies bearer tokens against the key set supplied by its
// KeyFunc. A Validator is immutable after construction and safe for
// concurrent use.
type Validator struct {
	keyFunc          KeyFunc
	allowedAlgs      map[jwa.SignatureAlgorithm]struct{}
	expectedIssuer   string
	expectedAudience string
	allowedClockSkew time.Duration
}

// New sets up a new Validator with the required keyFunc and any custom
// options. By default only the RS256, RS384 and RS512 algorithms are
// accepted.
func New(keyFunc KeyFunc, opts ...Option) (*Validator, error) {
	if keyFunc == nil {
		return nil, errors.New("keyFunc is required but was nil")
	}

	v := &Validator{
		keyFunc: keyFunc,
		allowedAlgs: map[jwa.SignatureAlgorithm]struct{}{
			jwa.RS256: {},
			jwa.RS384: {},
			jwa.RS512: {},
		},
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// ValidateToken verifies the passed in compact token and returns its
// claims. The operation is deterministic for a fixed key set and runs
// in full on every call; tokens are never memoized.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	kid, headerAlg, err := decodeHeader(tokenString)
	if err != nil {
		return nil, err
	}

	keys, err := v.keyFunc(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := keys.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: no key found for key ID %q", ErrInvalidToken, kid)
	}

	alg, pub, err := v.resolveKey(key, headerAlg)
	if err != nil {
		return nil, err
	}

	parseOpts := []jwt.ParseOption{
		jwt.WithKey(alg, pub),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.allowedClockSkew),
	}
	if v.expectedIssuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(v.expectedIssuer))
	}
	if v.expectedAudience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(v.expectedAudience))
	}

	token, err := jwt.Parse([]byte(tokenString), parseOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claimsFromToken(token), nil
}

// decodeHeader extracts the key ID and declared algorithm from the
// token's protected header without verifying the signature. Nothing it
// returns is trusted until the signature check passes.
func decodeHeader(tokenString string) (kid string, alg jwa.SignatureAlgorithm, err error) {
	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return "", "", fmt.Errorf("%w: could not parse token: %v", ErrInvalidToken, err)
	}

	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return "", "", fmt.Errorf("%w: expected exactly one signature, got %d", ErrInvalidToken, len(sigs))
	}

	headers := sigs[0].ProtectedHeaders()
	kid = headers.KeyID()
	if kid == "" {
		return "", "", fmt.Errorf("%w: token header has no key ID", ErrInvalidToken)
	}

	return kid, headers.Algorithm(), nil
}

// resolveKey determines the verification algorithm and extracts the raw
// public key. The algorithm declared on the matched key is preferred
// over the token header's, and either way the result must be on the
// allow-list. Only RSA key material is supported.
func (v *Validator) resolveKey(key jwk.Key, headerAlg jwa.SignatureAlgorithm) (jwa.SignatureAlgorithm, *rsa.PublicKey, error) {
	if key.KeyType() != jwa.RSA {
		return "", nil, fmt.Errorf("%w: unsupported key type %q", ErrInvalidToken, key.KeyType())
	}

	alg := headerAlg
	if keyAlg, ok := key.Algorithm().(jwa.SignatureAlgorithm); ok && keyAlg != "" {
		alg = keyAlg
	}

	if _, ok := v.allowedAlgs[alg]; !ok {
		return "", nil, fmt.Errorf("%w: algorithm %q is not allowed", ErrInvalidToken, alg)
	}

	var pub rsa.PublicKey
	if err := key.Raw(&pub); err != nil {
		return "", nil, fmt.Errorf("%w: could not extract public key: %v", ErrInvalidToken, err)
	}

	return alg, &pub, nil
}

func claimsFromToken(token jwt.Token) *Claims {
	var scope string
	if raw, ok := token.Get("scope"); ok {
		scope, _ = raw.(string)
	}

	return &Claims{
		Subject: token.Subject(),
		Issuer:  token.Issuer(),
		Expiry:  token.Expiration(),
		Scopes:  ParseScopes(scope),
	}
}
