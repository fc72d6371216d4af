package validator

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// Option is how options for the Validator are set up.
type Option func(*Validator) error

// WithAllowedAlgorithms replaces the default algorithm allow-list.
// Only algorithms for RSA key material are supported; anything else is
// rejected at construction so the allow-list can never drift outside
// the supported key family.
func WithAllowedAlgorithms(algs ...SignatureAlgorithm) Option {
	return func(v *Validator) error {
		if len(algs) == 0 {
			return fmt.Errorf("at least one allowed algorithm is required")
		}
		allowed := make(map[jwa.SignatureAlgorithm]struct{}, len(algs))
		for _, alg := range algs {
			jwaAlg, ok := supportedAlgorithms[alg]
			if !ok {
				return fmt.Errorf("unsupported signature algorithm %q", alg)
			}
			allowed[jwaAlg] = struct{}{}
		}
		v.allowedAlgs = allowed
		return nil
	}
}

// WithIssuer sets an expected issuer. Tokens whose iss claim does not
// match fail verification.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		v.expectedIssuer = issuer
		return nil
	}
}

// WithAudience sets an expected audience. Tokens whose aud claim does
// not contain it fail verification.
func WithAudience(audience string) Option {
	return func(v *Validator) error {
		v.expectedAudience = audience
		return nil
	}
}

// WithAllowedClockSkew sets the leeway applied when validating
// temporal claims. Defaults to zero.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return fmt.Errorf("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}
