package authgate

import "net/http"

// Option is how options for the Middleware are set up.
type Option func(*Middleware)

// WithErrorHandler sets the handler invoked when any step of the gate
// fails. Defaults to DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithTokenExtractor sets the function used to extract the token from
// the request. Defaults to AuthHeaderTokenExtractor.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *Middleware) {
		if e != nil {
			m.tokenExtractor = e
		}
	}
}

// WithCredentialsOptional makes requests without a token pass through
// the middleware with no claims in context. Handlers registered via
// Handle still reject such requests when proving their scope.
//
// Default: false (credentials required).
func WithCredentialsOptional(value bool) Option {
	return func(m *Middleware) {
		m.credentialsOptional = value
	}
}

// WithValidateOnOptions sets whether OPTIONS requests have their token
// validated.
//
// Default: true.
func WithValidateOnOptions(value bool) Option {
	return func(m *Middleware) {
		m.validateOnOptions = value
	}
}

// WithExclusionURLs configures URLs to exclude from token validation.
// Entries are matched against both the full request URL and its path.
func WithExclusionURLs(exclusions []string) Option {
	return func(m *Middleware) {
		if len(exclusions) == 0 {
			return
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			fullURL := r.URL.String()
			for _, exclusion := range exclusions {
				if fullURL == exclusion || r.URL.Path == exclusion {
					return true
				}
			}
			return false
		}
	}
}

// WithLogger sets the logger used throughout the validation flow.
func WithLogger(logger Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for verification outcomes.
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithTracer sets the tracer used to span each token check.
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}
