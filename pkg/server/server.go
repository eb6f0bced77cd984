// Package server exposes the verification gateway over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
	"github.com/dvpnlabs/access-gateway/pkg/config"
	"github.com/dvpnlabs/access-gateway/pkg/entitlement"
	"github.com/dvpnlabs/access-gateway/pkg/noderegistry"
)

// Server is the access-verification gateway.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	checker  entitlement.SubscriptionChecker
	resolver *noderegistry.Resolver
	router   *chi.Mux
}

// New creates a gateway server and registers its routes.
func New(cfg *config.Config, log *slog.Logger, checker entitlement.SubscriptionChecker, resolver *noderegistry.Resolver) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		checker:  checker,
		resolver: resolver,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/verify-subscription", s.handleVerifySubscription)
	s.router.Get("/api/nodes/{address}", s.handleGetNodeDetails)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// VerifyRequest is the body for POST /verify-subscription.
type VerifyRequest struct {
	EthAddress string `json:"eth_address"`
}

// VerifyResponse is returned when the account holds an active subscription.
type VerifyResponse struct {
	Status string `json:"status"`
}

// POST /verify-subscription
// Request: { "eth_address": "0x..." }
// Response: 200 { "status": "active" } | 400 | 401 | 500
func (s *Server) handleVerifySubscription(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "eth_address is required")
		return
	}

	account, err := addr.Normalize(req.EthAddress)
	if err != nil {
		if errors.Is(err, addr.ErrEmpty) {
			writeError(w, http.StatusBadRequest, "eth_address is required")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid eth_address: "+err.Error())
		return
	}

	active, err := s.checker.HasActiveSubscription(r.Context(), account)
	if err != nil {
		// The raw error stays in the logs; callers get a fixed message.
		s.log.Error("subscription check failed",
			"address", account.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "subscription verification failed")
		return
	}

	if !active {
		writeError(w, http.StatusUnauthorized, "No active subscription")
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{Status: "active"})
}

// GET /api/nodes/{address}
// Always responds 200: either the approved record or the placeholder pair.
func (s *Server) handleGetNodeDetails(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "address")

	account, err := addr.Normalize(raw)
	if err != nil {
		// A malformed address cannot match a record; degrade like a miss.
		s.log.Warn("invalid node address, serving placeholder",
			"address", raw, "error", err)
		writeJSON(w, http.StatusOK, noderegistry.FallbackDetails())
		return
	}

	result := s.resolver.Resolve(r.Context(), account)
	if result.Source == noderegistry.SourceFallback {
		s.log.Debug("node details fell back to placeholder", "address", account.String())
	}

	writeJSON(w, http.StatusOK, result.Details)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
