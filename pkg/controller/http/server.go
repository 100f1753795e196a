package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
)

type Server struct {
	router *chi.Mux
	signer Signer
	policy interfaces.PolicyClient
	apiKey types.APIKey
}

type Options func(*Server)

// WithPolicy enables authorization of /api requests. Without it every
// request is allowed.
func WithPolicy(policy interfaces.PolicyClient) Options {
	return func(s *Server) {
		s.policy = policy
	}
}

// WithAPIKey sets the client-visible provider key served by /api/config and
// embedded in user tokens.
func WithAPIKey(apiKey types.APIKey) Options {
	return func(s *Server) {
		s.apiKey = apiKey
	}
}

func New(signer Signer, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		signer: signer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)

		r.Group(func(r chi.Router) {
			r.Use(authorizeWithPolicy(s.policy))
			r.Get("/hmac", hmacHandler(s.signer))
			r.Get("/jwt", jwtHandler(s.signer, s.apiKey))
			r.Get("/config", configHandler(s.apiKey))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
