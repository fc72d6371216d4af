// Command server runs a small API protected by the authentication
// gate. It demonstrates the full wiring: key set fetching and caching,
// token verification, scope-gated handlers and the boundary error
// mapping, with metrics exposed on /metrics.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/LucasCairns/authgate"
	"github.com/LucasCairns/authgate/jwks"
	"github.com/LucasCairns/authgate/validator"
)

type config struct {
	// AUTH_BASE_URL is deliberately optional: when unset the server
	// starts normally and requests fail with 503 until it is
	// configured, rather than crash-looping at boot.
	AuthBaseURL string        `env:"AUTH_BASE_URL"`
	ServerPort  int           `env:"SERVER_PORT,default=8080"`
	CacheTTL    time.Duration `env:"AUTH_CACHE_TTL,default=300s"`
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		log.WithError(err).Fatal("could not decode configuration")
	}

	provider := jwks.NewProvider(jwks.WithBaseURL(cfg.AuthBaseURL))
	cache := jwks.NewCachingProvider(provider, jwks.WithCacheTTL(cfg.CacheTTL))

	jwtValidator, err := validator.New(cache.KeyFunc)
	if err != nil {
		log.WithError(err).Fatal("could not create validator")
	}

	gate := authgate.New(
		jwtValidator,
		authgate.WithLogger(authgate.NewLogrusLogger(log)),
		authgate.WithMetrics(authgate.NewPrometheusMetrics(nil)),
	)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", gate.CheckJWT(http.HandlerFunc(hello)))
	mux.Handle("GET /person", authgate.Handle(gate, listPeople))
	mux.Handle("POST /person", authgate.Handle(gate, createPerson))
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.WithField("addr", addr).Info("server listening")

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func hello(w http.ResponseWriter, r *http.Request) {
	claims, err := authgate.ClaimsFromContext(r.Context())
	if err != nil {
		authgate.DefaultErrorHandler(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Hello, %s!", claims.Subject),
		"scopes":  claims.Scopes.List(),
	})
}

// listPeople requires the "read" scope; the parameter type is the
// declaration.
func listPeople(w http.ResponseWriter, r *http.Request, user authgate.ReadUser) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Client '%s' may list people", user.Username),
	})
}

// createPerson requires the "write" scope.
func createPerson(w http.ResponseWriter, r *http.Request, user authgate.WriteUser) {
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("Client '%s' may create people", user.Username),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
