package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authorization "carebridge/contexts/identity-access/authorization-service"
	"carebridge/contexts/identity-access/authorization-service/adapters/token"
	authzentities "carebridge/contexts/identity-access/authorization-service/domain/entities"
	disputeservice "carebridge/contexts/trust-safety/dispute-service"
	verificationservice "carebridge/contexts/trust-safety/verification-service"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	resolver      *token.Resolver
	authorization authorization.Module
	verification  verificationservice.Module
	disputes      disputeservice.Module
}

func New(
	authorizationModule authorization.Module,
	verificationModule verificationservice.Module,
	disputeModule disputeservice.Module,
	resolver *token.Resolver,
	registry *prometheus.Registry,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		resolver:      resolver,
		authorization: authorizationModule,
		verification:  verificationModule,
		disputes:      disputeModule,
	}
	s.registerRoutes(registry)
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes(registry *prometheus.Registry) {
	if registry != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/authz/v1/check", s.handleAuthzCheck)

	s.mux.HandleFunc("POST /api/verification/v1/submissions", s.handleCreateSubmission)
	s.mux.HandleFunc("GET /api/verification/v1/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("GET /api/verification/v1/submissions/{submission_id}", s.handleGetSubmission)
	s.mux.HandleFunc("POST /api/verification/v1/submissions/{submission_id}/recommend", s.handleRecommendSubmission)
	s.mux.HandleFunc("POST /api/verification/v1/submissions/{submission_id}/decide", s.handleDecideSubmission)

	s.mux.HandleFunc("POST /api/disputes/v1/disputes", s.handleRaiseDispute)
	s.mux.HandleFunc("GET /api/disputes/v1/disputes", s.handleListDisputes)
	s.mux.HandleFunc("GET /api/disputes/v1/disputes/{dispute_id}", s.handleGetDispute)
	s.mux.HandleFunc("POST /api/disputes/v1/disputes/{dispute_id}/review", s.handleAssignModerator)
	s.mux.HandleFunc("POST /api/disputes/v1/disputes/{dispute_id}/escalate", s.handleEscalateDispute)
	s.mux.HandleFunc("POST /api/disputes/v1/disputes/{dispute_id}/resolve", s.handleResolveDispute)
	s.mux.HandleFunc("POST /api/disputes/v1/disputes/{dispute_id}/close", s.handleCloseDispute)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveIdentity authenticates the request from its bearer token. A
// missing or bad token ends the request with 401.
func (s *Server) resolveIdentity(w http.ResponseWriter, r *http.Request) (authzentities.Identity, bool) {
	raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
	identity, err := s.resolver.Resolve(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "a valid bearer token is required")
		return authzentities.Identity{}, false
	}
	return identity, true
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// writeForbidden returns the uniform denial body. The response never says
// whether the role, the ownership check or the tier rule failed; reasons
// live in the audit log only.
func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "forbidden", "forbidden")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
