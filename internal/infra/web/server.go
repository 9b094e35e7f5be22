package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/config"
	"resume-rewrite-service/internal/domain/ports/repository"
	"resume-rewrite-service/internal/infra/logging"
	"resume-rewrite-service/internal/infra/metrics"
	"resume-rewrite-service/internal/usecase"
)

// RateLimiter gates requests per client key. The Redis implementation
// satisfies it; nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server is the public API: initialize + modify stream plus the small
// catalog and health endpoints.
type Server struct {
	sessions repository.SessionStore
	modifyUC usecase.ModifyUseCase
	limiter  RateLimiter
	cfg      config.ServerConfig
	log      *zerolog.Logger
}

func NewServer(
	sessions repository.SessionStore,
	modifyUC usecase.ModifyUseCase,
	limiter RateLimiter,
	cfg config.ServerConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		sessions: sessions,
		modifyUC: modifyUC,
		limiter:  limiter,
		cfg:      cfg,
		log:      logger,
	}
}

// Handler builds the chi router with CORS and request logging applied
// to every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.logMiddleware)

	r.Post("/api/initialize", s.handleInitialize)
	r.Get("/api/modify", s.handleModify)
	r.Get("/api/language", s.handleLanguage)
	r.Get("/api/health", s.handleHealth)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.cfg.AllowOrigins) == 0 {
		return true
	}
	for _, o := range s.cfg.AllowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithClientAddr(r.Context(), clientAddr(r))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		route := r.URL.Path
		metrics.ObserveHTTP(route, strconv.Itoa(sw.status/100*100), start)
		s.log.Info().
			Str("method", r.Method).
			Str("path", route).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// statusWriter records the status code while passing flushes through so
// SSE streaming keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
