// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"resume-rewrite-service/internal/config"
	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/domain/ports/repository"
	"resume-rewrite-service/internal/domain/ports/retrieval"
	aiAdapters "resume-rewrite-service/internal/infra/adapters/ai"
	pg "resume-rewrite-service/internal/infra/db/postgres"
	"resume-rewrite-service/internal/infra/logging"
	"resume-rewrite-service/internal/infra/metrics"
	"resume-rewrite-service/internal/infra/persistence"
	red "resume-rewrite-service/internal/infra/redis"
	"resume-rewrite-service/internal/infra/scheduler"
	"resume-rewrite-service/internal/infra/session"
	"resume-rewrite-service/internal/infra/templates"
	"resume-rewrite-service/internal/infra/web"
	"resume-rewrite-service/internal/infra/worker"
	"resume-rewrite-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, no auth checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Redis (session backend and rate limiter, both optional) ----
	var redisClient red.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
	}

	// ---- Session store ----
	var sessions repository.SessionStore
	switch strings.ToLower(cfg.Session.Backend) {
	case "redis":
		if redisClient == nil {
			log.Fatalf("session.backend=redis requires redis.url")
		}
		sessions = red.NewSessionStore(redisClient, cfg.Session.Timeout)
		logger.Info().Msg("session store: redis")
	default:
		sessions = session.NewMemoryStore(cfg.Session.Timeout)
		logger.Info().Msg("session store: memory")
	}

	// ---- AI adapter ----
	var ai adapter.AIServiceAdapter
	if cfg.Runtime.Dev && cfg.AI.APIKey == "" {
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev)")
	} else {
		primary, err := aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		ai = primary
		logger.Info().Str("base", cfg.AI.BaseURL).Str("model", cfg.AI.Model).Msg("AI adapter: openai-compatible")

		if cfg.AI.GeminiKey != "" {
			gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, "gemini-2.0-flash", 4096)
			if err != nil {
				log.Fatalf("gemini adapter: %v", err)
			}
			ai = aiAdapters.NewMultiAIAdapter("zhipu", map[string]adapter.AIServiceAdapter{
				"zhipu":  primary,
				"openai": primary,
				"gemini": gemini,
			}, nil)
			logger.Info().Msg("AI adapter: multi (openai-compatible + gemini)")
		}
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)

	// ---- Retriever ----
	var emb *templates.EmbeddingsClient
	if cfg.Embeddings.APIKey != "" {
		emb, err = templates.NewEmbeddingsClient(cfg.Embeddings.APIKey, cfg.Embeddings.BaseURL, cfg.Embeddings.Model)
		if err != nil {
			log.Fatalf("embeddings: %v", err)
		}
	}
	var source retrieval.TemplateSource
	if cfg.Retrieval.TemplateURL != "" {
		source = templates.NewHTTPTemplateSource(cfg.Retrieval.TemplateURL, 10*time.Second)
	}
	retriever := templates.NewTemplateRetriever(source, emb, logger)

	// ---- Result store (HTTP save backend or Postgres) ----
	var results repository.ResultStore
	var resultFinder web.ResultFinder
	switch {
	case cfg.Save.URL != "":
		results = persistence.NewHTTPResultStore(cfg.Save.URL, cfg.Save.Timeout)
		logger.Info().Str("url", logging.Redact(cfg.Save.URL, cfg.Runtime.Dev)).Msg("result store: http")
	case cfg.Database.URL != "":
		pool := pg.MustConnectPostgres(cfg.Database.URL)
		defer pool.Close()
		repo := pg.NewResultRepo(pool)
		results = repo
		resultFinder = repo
		logger.Info().Msg("result store: postgres")
	default:
		logger.Warn().Msg("no result store configured; completed runs are not persisted")
	}

	// ---- Worker pool for fire-and-forget saves ----
	pool := worker.NewPool(4)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	modifyUC := usecase.NewModifyUseCase(sessions, results, ai, retriever, pool, usecase.ModifyConfig{
		Model:         cfg.AI.Model,
		K:             cfg.Retrieval.K,
		MaxRewrites:   cfg.Retrieval.MaxRewrites,
		Graded:        cfg.Retrieval.Graded,
		CallTimeout:   cfg.AI.CallTimeout,
		StreamTimeout: cfg.AI.StreamTimeout,
		SaveTimeout:   cfg.Save.Timeout,
	}, logger)
	statsUC := usecase.NewStatsUseCase(sessions, ai, logger)

	// ---- Session sweeper ----
	sweeper := scheduler.NewScheduler(cfg.Session.SweepInterval, sessions)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ---- Public API ----
	var limiter web.RateLimiter
	if redisClient != nil {
		limiter = red.NewRateLimiter(redisClient)
	}
	srv := web.NewServer(sessions, modifyUC, limiter, cfg.Server, logger)
	public := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", public.Addr).Msg("public api listening")
		if err := public.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("public server error")
		}
	}()

	// ---- Admin API ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.TokenTTL)
	admin := web.NewAdminServer(auth, statsUC, resultFinder, cfg.Admin.Password, logger)
	adminMux := http.NewServeMux()
	admin.RegisterRoutes(adminMux)
	adminSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           adminMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", adminSrv.Addr).Msg("admin api listening")
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = public.Shutdown(shutdownCtx)
	_ = adminSrv.Shutdown(shutdownCtx)
	cancel()
}
