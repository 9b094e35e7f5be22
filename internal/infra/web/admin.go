// File: internal/infra/web/admin.go
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/usecase"
)

// ResultFinder is the optional read side of the Postgres result repo,
// exposed on the admin surface when a database is configured.
type ResultFinder interface {
	FindByUser(ctx context.Context, userID string, limit int) ([]model.RewriteResult, error)
}

// AdminServer serves the operator endpoints on a separate port: login,
// stats, stored results and Prometheus metrics.
type AdminServer struct {
	auth     *AuthManager
	statsUC  usecase.StatsUseCase
	results  ResultFinder // may be nil
	password string
	log      *zerolog.Logger
}

func NewAdminServer(auth *AuthManager, statsUC usecase.StatsUseCase, results ResultFinder, password string, logger *zerolog.Logger) *AdminServer {
	return &AdminServer{
		auth:     auth,
		statsUC:  statsUC,
		results:  results,
		password: password,
		log:      logger,
	}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *AdminServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/login", s.handleLogin)
	mux.HandleFunc("/admin/logout", s.handleLogout)
	mux.Handle("/admin/stats", s.auth.Require(http.HandlerFunc(s.handleStats)))
	mux.Handle("/admin/results", s.auth.Require(http.HandlerFunc(s.handleResults)))
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *AdminServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if s.password == "" || subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.password)) != 1 {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *AdminServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats snapshot failed")
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *AdminServer) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusNotFound, "result storage not configured")
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := s.results.FindByUser(r.Context(), userID, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("result lookup failed")
		writeError(w, http.StatusInternalServerError, "result lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
