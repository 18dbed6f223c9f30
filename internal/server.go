package internal

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/agentrep/trustledger/internal/config"
	"github.com/agentrep/trustledger/internal/ledger"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/clog"
)

type Server struct {
	server       *http.Server
	env          *config.Env
	ledgerServer *ledger.Server
}

func NewServer(env *config.Env, ledgerServer *ledger.Server) *Server {
	return &Server{
		env:          env,
		ledgerServer: ledgerServer,
	}
}

// Handler builds the full HTTP handler: JSON API under /api/v1, plain and
// gRPC health checks, CORS and API key enforcement.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
		)
		s.ledgerServer.Routes(r)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "method not allowed", nil)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker()))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip API key check for health endpoints.
		if r.URL.Path == "/health" || r.URL.Path == "/grpc.health.v1.Health/Check" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.env.APIKey)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
