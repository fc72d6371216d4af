/*
Package authgate is a request-boundary authentication and authorization
gate for HTTP APIs. It verifies bearer tokens against the identity
provider's published signing keys, projects verified claims into typed,
scope-proven identities, and rejects requests that lack a valid token
or the scope a handler requires before the handler ever runs.

# Quick Start

	provider := jwks.NewProvider(jwks.WithBaseURL(os.Getenv("AUTH_BASE_URL")))
	cache := jwks.NewCachingProvider(provider)

	jwtValidator, err := validator.New(cache.KeyFunc)
	if err != nil {
	    log.Fatal(err)
	}

	gate := authgate.New(jwtValidator)

	mux := http.NewServeMux()
	mux.Handle("/person", authgate.Handle(gate, listPeople))

	func listPeople(w http.ResponseWriter, r *http.Request, user authgate.ReadUser) {
	    // Reaching this point proves the caller presented a valid,
	    // unexpired token carrying the "read" scope.
	    fmt.Fprintf(w, "hello, %s", user.Username)
	}

The identity parameter type is the authorization declaration: a handler
taking authgate.WriteUser cannot be invoked without the "write" scope.

# Error Responses

Failures map to protocol-level responses before any handler logic runs:

	Missing Authorization header  401 {"message":"Missing token"}
	Malformed or unverifiable     401 {"message":"Invalid token"}
	Valid signature, expired      401 {"message":"Token expired"}
	Key set unobtainable          503 {"message":"Unable to verify JWT token"}
	Valid token, missing scope    403 {"message":"Client requires the scope: ..."}

Only the 503 signals an operational problem worth alerting on; the rest
are caller credential problems. Every request fails independently and
the server keeps serving others.

# Architecture

	authgate    HTTP middleware, token extraction, typed identities,
	            boundary error mapping
	validator   token verification: key ID resolution, algorithm
	            allow-list, signature and temporal claim checks
	jwks        key set fetching and time-bounded caching

Adapters for Gin, Echo and gRPC live under framework/.
*/
package authgate
