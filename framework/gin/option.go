package authgin

// Option is how options for the Gin adapter are set up.
type Option func(*config)

type config struct {
	claimsKey string
}

// WithClaimsKey overrides the Gin context key under which verified
// claims are stored. Defaults to DefaultClaimsKey.
func WithClaimsKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.claimsKey = key
		}
	}
}
