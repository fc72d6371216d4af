package authgrpc

import "github.com/LucasCairns/authgate"

// Option is how options for the Interceptor are set up.
type Option func(*Interceptor)

// WithTokenExtractor sets the function used to extract the token from
// the call metadata. Defaults to MetadataTokenExtractor.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) {
		if e != nil {
			i.tokenExtractor = e
		}
	}
}

// WithRequiredScope requires the given scope for calls to the named
// full method (e.g. "/person.PersonService/CreatePerson"). Methods
// without a registered scope only require a valid token.
func WithRequiredScope(fullMethod, scope string) Option {
	return func(i *Interceptor) {
		i.requiredScopes[fullMethod] = scope
	}
}

// WithLogger sets the logger used by the interceptor.
func WithLogger(logger authgate.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}
